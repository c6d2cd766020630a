package updater

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/kubedeps/pkg/dependency"
	"github.com/lucas-albers-lz4/kubedeps/pkg/fetcher"
	"github.com/lucas-albers-lz4/kubedeps/pkg/testutil"
)

func req(file string, src dependency.Source) dependency.Requirement {
	return dependency.Requirement{Groups: []string{}, File: file, Source: src}
}

func dep(name, version, previous string, reqs, prev []dependency.Requirement) dependency.Dependency {
	return dependency.Dependency{
		Name:                 name,
		Version:              version,
		PreviousVersion:      previous,
		Requirements:         reqs,
		PreviousRequirements: prev,
		PackageManager:       dependency.PackageManager,
	}
}

func TestUpdatedFiles(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		dep      dependency.Dependency
		contains []string
		absent   []string
	}{
		{
			name:    "multiple identical lines",
			content: testutil.MultipleIdenticalPod,
			dep: dep("nginx", "1.14.3", "1.14.2",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.3"})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})}),
			contains: []string{"    image: nginx:1.14.3\n    ports:\n    - containerPort: 80", "    image: nginx:1.14.3\n    ports:\n    - containerPort: 81", "kind: Pod"},
			absent:   []string{"nginx:1.14.2"},
		},
		{
			name:    "only the matching image among several",
			content: testutil.MultiplePod,
			dep: dep("nginx", "1.14.3", "1.14.2",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.3"})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})}),
			contains: []string{"image: ubuntu:17.04", "image: nginx:1.14.3"},
		},
		{
			name:    "namespace",
			content: testutil.NamespacePod,
			dep: dep("my-repo/nginx", "1.14.3", "1.14.2",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.3"})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})}),
			contains: []string{"image: my-repo/nginx:1.14.3"},
		},
		{
			name:    "private registry",
			content: testutil.PrivateTagPod,
			dep: dep("myreg/ubuntu", "17.10", "17.04",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Registry: "registry-host.io:5000", Tag: "17.10"})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Registry: "registry-host.io:5000", Tag: "17.04"})}),
			contains: []string{"image: registry-host.io:5000/myreg/ubuntu:17.10"},
		},
		{
			name:    "explicit default registry is kept",
			content: testutil.V1TagPod,
			dep: dep("myreg/ubuntu", "17.10", "17.04",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "17.10"})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "17.04"})}),
			contains: []string{"image: docker.io/myreg/ubuntu:17.10"},
		},
		{
			name:    "explicit default registry replaced by a new registry",
			content: testutil.V1TagPod,
			dep: dep("myreg/ubuntu", "17.10", "17.04",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Registry: "mirror.example.com", Tag: "17.10"})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "17.04"})}),
			contains: []string{"image: mirror.example.com/myreg/ubuntu:17.10\n"},
			absent:   []string{"docker.io"},
		},
		{
			name:    "digest",
			content: testutil.DigestPod,
			dep: dep("ubuntu", "17.10", "12.04.5",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Digest: testutil.NewDigest})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Digest: testutil.OldDigest})}),
			contains: []string{"image: ubuntu@" + testutil.NewDigest},
			absent:   []string{testutil.OldDigest},
		},
		{
			name:    "tag and digest",
			content: testutil.DigestAndTagPod,
			dep: dep("ubuntu", "17.10", "12.04.5",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "17.10", Digest: testutil.NewDigest})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "12.04.5", Digest: testutil.OldDigest})}),
			contains: []string{"image: ubuntu:17.10@" + testutil.NewDigest},
		},
		{
			name:    "private registry digest",
			content: testutil.PrivateDigestPod,
			dep: dep("myreg/ubuntu", "17.10", "17.04",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Registry: "registry-host.io:5000", Digest: testutil.NewDigest})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Registry: "registry-host.io:5000", Digest: testutil.OldDigest})}),
			contains: []string{"image: registry-host.io:5000/myreg/ubuntu@" + testutil.NewDigest},
		},
		{
			name:    "quoted values and list items",
			content: "containers:\n- image: \"nginx:1.14.2\"\n- image: 'nginx:1.14.2' # pinned\nimage: nginx:1.14.2",
			dep: dep("nginx", "1.14.3", "1.14.2",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.3"})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})}),
			contains: []string{"- image: \"nginx:1.14.3\"\n", "- image: 'nginx:1.14.3' # pinned\n", "\nimage: nginx:1.14.3"},
			absent:   []string{"1.14.2"},
		},
		{
			name:    "windows line endings",
			content: "spec:\r\n  containers:\r\n  - image: nginx:1.14.2\r\n",
			dep: dep("nginx", "1.14.3", "1.14.2",
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.3"})},
				[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})}),
			contains: []string{"  - image: nginx:1.14.3\r\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := []fetcher.File{{Name: "pod.yaml", Content: tt.content}}
			updated, err := New(files, tt.dep).UpdatedFiles()
			require.NoError(t, err)
			require.Len(t, updated, 1)
			assert.Equal(t, "pod.yaml", updated[0].Name)
			for _, s := range tt.contains {
				assert.Contains(t, updated[0].Content, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, updated[0].Content, s)
			}
			assert.Equal(t, strings.Count(tt.content, "\n"), strings.Count(updated[0].Content, "\n"))
			assert.Equal(t, tt.content, files[0].Content, "input must not be modified")
		})
	}
}

func TestUpdatedFilesPrefixIsNotMatched(t *testing.T) {
	content := "spec:\n  containers:\n  - image: nginx:1.14.2-alpine\n  - image: nginx:1.14.2\n  - image: nginx:1.14.20\n"
	d := dep("nginx", "1.14.3", "1.14.2",
		[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.3"})},
		[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})})

	updated, err := New([]fetcher.File{{Name: "pod.yaml", Content: content}}, d).UpdatedFiles()
	require.NoError(t, err)
	assert.Equal(t, "spec:\n  containers:\n  - image: nginx:1.14.2-alpine\n  - image: nginx:1.14.3\n  - image: nginx:1.14.20\n", updated[0].Content)
}

func TestUpdatedFilesOnlyImageKeys(t *testing.T) {
	content := "metadata:\n  annotations:\n    previous-image: nginx:1.14.2\n    note: image: nginx:1.14.2\nspec:\n  image: nginx:1.14.2\n"
	d := dep("nginx", "1.14.3", "1.14.2",
		[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.3"})},
		[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})})

	updated, err := New([]fetcher.File{{Name: "pod.yaml", Content: content}}, d).UpdatedFiles()
	require.NoError(t, err)
	assert.Equal(t, "metadata:\n  annotations:\n    previous-image: nginx:1.14.2\n    note: image: nginx:1.14.2\nspec:\n  image: nginx:1.14.3\n", updated[0].Content)
}

func TestUpdatedFilesCrossFileIsolation(t *testing.T) {
	files := []fetcher.File{
		{Name: "a.yaml", Content: testutil.MultipleIdenticalPod},
		{Name: "b.yaml", Content: testutil.NamespacePod + "---\n" + testutil.MultiplePod},
		{Name: "c.yaml", Content: testutil.PrivateTagPod},
		{Name: "README.md", Content: "image: nginx:1.14.2\n"},
	}
	d := dep("nginx", "1.14.3", "1.14.2",
		[]dependency.Requirement{
			req("a.yaml", dependency.Source{Tag: "1.14.3"}),
			req("b.yaml", dependency.Source{Tag: "1.14.3"}),
			req("README.md", dependency.Source{Tag: "1.14.3"}),
		},
		[]dependency.Requirement{
			req("a.yaml", dependency.Source{Tag: "1.14.2"}),
			req("b.yaml", dependency.Source{Tag: "1.14.2"}),
			req("README.md", dependency.Source{Tag: "1.14.2"}),
		})

	updated, err := New(files, d).UpdatedFiles()
	require.NoError(t, err)
	require.Len(t, updated, 2)

	assert.Equal(t, "a.yaml", updated[0].Name)
	assert.Equal(t, 2, strings.Count(updated[0].Content, "image: nginx:1.14.3"))

	assert.Equal(t, "b.yaml", updated[1].Name)
	assert.Contains(t, updated[1].Content, "image: my-repo/nginx:1.14.2")
	assert.Contains(t, updated[1].Content, "image: nginx:1.14.3")
	assert.Contains(t, updated[1].Content, "image: ubuntu:17.04")
}

func TestUpdatedFilesSkipsUnchangedRequirements(t *testing.T) {
	files := []fetcher.File{
		{Name: "a.yaml", Content: testutil.MultipleIdenticalPod},
		{Name: "b.yaml", Content: testutil.MultipleIdenticalPod},
	}
	d := dep("nginx", "1.14.3", "1.14.2",
		[]dependency.Requirement{
			req("a.yaml", dependency.Source{Tag: "1.14.3"}),
			req("b.yaml", dependency.Source{Tag: "1.14.2"}),
		},
		[]dependency.Requirement{
			req("a.yaml", dependency.Source{Tag: "1.14.2"}),
			req("b.yaml", dependency.Source{Tag: "1.14.2"}),
		})

	updated, err := New(files, d).UpdatedFiles()
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "a.yaml", updated[0].Name)
}

func TestUpdatedFilesErrors(t *testing.T) {
	t.Run("identical old and new references", func(t *testing.T) {
		d := dep("nginx", "1.14.2", "1.14.2",
			[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})},
			[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})})
		_, err := New([]fetcher.File{{Name: "pod.yaml", Content: testutil.MultiplePod}}, d).UpdatedFiles()
		assert.True(t, errors.Is(err, ErrNoFilesChanged), "got %v", err)
	})

	t.Run("no-op replacement", func(t *testing.T) {
		d := dep("nginx", "1.14.2", "1.14.2",
			[]dependency.Requirement{
				req("pod.yaml", dependency.Source{Tag: "1.14.2"}),
				req("pod.yaml", dependency.Source{Tag: "9.9.9"}),
			},
			[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})})
		_, err := New([]fetcher.File{{Name: "pod.yaml", Content: testutil.MultipleIdenticalPod}}, d).UpdatedFiles()
		assert.True(t, errors.Is(err, ErrContentUnchanged), "got %v", err)
	})

	t.Run("old reference missing from the file", func(t *testing.T) {
		d := dep("nginx", "1.14.3", "1.14.1",
			[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.3"})},
			[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.1"})})
		_, err := New([]fetcher.File{{Name: "pod.yaml", Content: testutil.MultiplePod}}, d).UpdatedFiles()
		assert.True(t, errors.Is(err, ErrContentUnchanged))
		assert.Contains(t, err.Error(), "pod.yaml")
	})

	t.Run("no files", func(t *testing.T) {
		d := dep("nginx", "1.14.3", "1.14.2",
			[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.3"})},
			[]dependency.Requirement{req("pod.yaml", dependency.Source{Tag: "1.14.2"})})
		_, err := New(nil, d).UpdatedFiles()
		assert.True(t, errors.Is(err, ErrNoFilesChanged))
	})
}
