package manifest

import (
	"gopkg.in/yaml.v3"
)

// ImageKey is the only mapping key whose value is collected.
const ImageKey = "image"

const (
	strTag   = "!!str"
	mergeTag = "!!merge"
)

// CollectImageStrings walks node depth-first in document order and returns
// the value of every "image" key whose value is a non-empty string, at any
// depth. A mapping's own image comes before those of its children. Aliases
// are followed and merge keys are expanded in place. Duplicates are kept.
func CollectImageStrings(node *yaml.Node) []string {
	var out []string
	collect(node, &out)
	return out
}

func collect(node *yaml.Node, out *[]string) {
	node = resolveAlias(node)
	if node == nil {
		return
	}

	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			collect(child, out)
		}
	case yaml.MappingNode:
		pairs := mappingPairs(node)
		for _, p := range pairs {
			if isImageKey(p.key) {
				if s, ok := stringValue(p.value); ok {
					*out = append(*out, s)
				}
				break
			}
		}
		for _, p := range pairs {
			collect(p.value, out)
		}
	}
}

type pair struct {
	key, value *yaml.Node
}

// mappingPairs returns the key/value pairs of node in document order, with
// each merge key replaced by the pairs it brings in. Explicit keys win over
// merged ones and earlier merge sources win over later ones.
func mappingPairs(node *yaml.Node) []pair {
	explicit := make(map[string]struct{})
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := resolveAlias(node.Content[i]); !isMergeKey(key) {
			explicit[key.Value] = struct{}{}
		}
	}

	merged := make(map[string]struct{})
	pairs := make([]pair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := resolveAlias(node.Content[i]), node.Content[i+1]
		if !isMergeKey(key) {
			pairs = append(pairs, pair{key: key, value: value})
			continue
		}
		for _, source := range mergeSources(value) {
			for _, p := range mappingPairs(source) {
				if _, ok := explicit[p.key.Value]; ok {
					continue
				}
				if _, ok := merged[p.key.Value]; ok {
					continue
				}
				merged[p.key.Value] = struct{}{}
				pairs = append(pairs, p)
			}
		}
	}
	return pairs
}

// mergeSources returns the mappings a merge key value refers to: one mapping
// or a sequence of them.
func mergeSources(value *yaml.Node) []*yaml.Node {
	value = resolveAlias(value)
	if value == nil {
		return nil
	}
	switch value.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{value}
	case yaml.SequenceNode:
		var sources []*yaml.Node
		for _, child := range value.Content {
			if m := resolveAlias(child); m != nil && m.Kind == yaml.MappingNode {
				sources = append(sources, m)
			}
		}
		return sources
	}
	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isMergeKey(key *yaml.Node) bool {
	return key != nil && key.Kind == yaml.ScalarNode && key.ShortTag() == mergeTag
}

func isImageKey(key *yaml.Node) bool {
	return key != nil && key.Kind == yaml.ScalarNode && key.ShortTag() == strTag && key.Value == ImageKey
}

func stringValue(node *yaml.Node) (string, bool) {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.ScalarNode || node.ShortTag() != strTag || node.Value == "" {
		return "", false
	}
	return node.Value, true
}

// Images decodes content and returns its distinct image strings in first-seen order.
func Images(content string) ([]string, error) {
	docs, err := Decode(content)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var images []string
	for _, doc := range docs {
		for _, img := range CollectImageStrings(doc) {
			if _, dup := seen[img]; dup {
				continue
			}
			seen[img] = struct{}{}
			images = append(images, img)
		}
	}
	return images, nil
}
