// Package manifest decodes YAML manifest streams and walks the decoded
// documents for container image strings, without knowing any resource schema.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
)

// allowedTags is the YAML core schema plus the tags yaml.v3 resolves on its own.
var allowedTags = map[string]struct{}{
	"!!map":       {},
	"!!seq":       {},
	"!!str":       {},
	"!!int":       {},
	"!!float":     {},
	"!!bool":      {},
	"!!null":      {},
	"!!timestamp": {},
	"!!binary":    {},
	"!!merge":     {},
}

// Decode decodes every document in content and returns the root node of each.
// Empty and null documents are skipped.
func Decode(content string) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(strings.NewReader(content))

	var docs []*yaml.Node
	for i := 0; ; i++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode document %d: %w", i, err)
		}

		if err := checkTags(&node); err != nil {
			return nil, err
		}

		// Rejects duplicate keys, self-referencing anchors and excessive aliasing
		// before the node tree is walked.
		var value interface{}
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode document %d: %w", i, err)
		}

		root := documentRoot(&node)
		if root == nil {
			log.Debug("Skipping empty document", "index", i)
			continue
		}
		docs = append(docs, root)
	}
	return docs, nil
}

func documentRoot(node *yaml.Node) *yaml.Node {
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil
	}
	root := node.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return nil
	}
	return root
}

// checkTags rejects any node carrying a tag outside allowedTags.
// Alias targets are checked where they are anchored.
func checkTags(node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		// no tag of its own
	case yaml.AliasNode:
		return nil
	default:
		tag := node.ShortTag()
		if _, ok := allowedTags[tag]; !ok {
			return &DisallowedTagError{Tag: tag, Line: node.Line, Column: node.Column}
		}
	}
	for _, child := range node.Content {
		if err := checkTags(child); err != nil {
			return err
		}
	}
	return nil
}
