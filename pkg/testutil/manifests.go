package testutil

// Pod manifests used by the parser, updater and CLI tests.
const (
	// OldDigest and NewDigest are the two ubuntu digests used throughout the fixtures.
	OldDigest = "sha256:18305429afa14ea462f810146ba44d4363ae76e4c8dfc38288cf73aa07485005"
	NewDigest = "sha256:3ea1ca1aa8483a38081750953ad75046e6cc9f6b86ca97eba880ebf600d68608"

	MultiplePod = `apiVersion: v1
kind: Pod
metadata:
  name: multiple
spec:
  containers:
  - name: ubuntu
    image: ubuntu:17.04
  - name: nginx
    image: nginx:1.14.2
    ports:
    - containerPort: 80
`

	MultipleIdenticalPod = `apiVersion: v1
kind: Pod
metadata:
  name: nginx
spec:
  containers:
  - name: nginx
    image: nginx:1.14.2
    ports:
    - containerPort: 80
  - name: nginx2
    image: nginx:1.14.2
    ports:
    - containerPort: 81
`

	NamespacePod = `apiVersion: v1
kind: Pod
metadata:
  name: nginx
spec:
  containers:
  - name: nginx
    image: my-repo/nginx:1.14.2
    ports:
    - containerPort: 80
`

	PrivateTagPod = `apiVersion: v1
kind: Pod
metadata:
  name: ubuntu
spec:
  containers:
  - name: ubuntu
    image: registry-host.io:5000/myreg/ubuntu:17.04
`

	V1TagPod = `apiVersion: v1
kind: Pod
metadata:
  name: ubuntu
spec:
  containers:
  - name: ubuntu
    image: docker.io/myreg/ubuntu:17.04
`

	DigestPod = `apiVersion: v1
kind: Pod
metadata:
  name: ubuntu
spec:
  containers:
  - name: ubuntu
    image: ubuntu@` + OldDigest + `
`

	DigestAndTagPod = `apiVersion: v1
kind: Pod
metadata:
  name: ubuntu
spec:
  containers:
  - name: ubuntu
    image: ubuntu:12.04.5@` + OldDigest + `
`

	PrivateDigestPod = `apiVersion: v1
kind: Pod
metadata:
  name: ubuntu
spec:
  containers:
  - name: ubuntu
    image: registry-host.io:5000/myreg/ubuntu@` + OldDigest + `
`

	BarePod = `apiVersion: v1
kind: Pod
metadata:
  name: ubuntu
spec:
  containers:
  - name: ubuntu
    image: ubuntu
`

	// DeploymentWithInitContainers nests images at several depths and mixes in a CronJob document.
	DeploymentWithInitContainers = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    spec:
      initContainers:
      - name: migrate
        image: quay.io/acme/migrate:2.1.0
      containers:
      - name: web
        image: nginx:1.14.2
      - name: sidecar
        image: ""
---
apiVersion: batch/v1
kind: CronJob
metadata:
  name: report
spec:
  jobTemplate:
    spec:
      template:
        spec:
          containers:
          - name: report
            image: nginx:1.14.2
`
)
