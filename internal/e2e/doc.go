// Package e2e assembles the kfctl end-to-end test workflow.
//
// The workflow checks out the repositories, builds and deploys Kubeflow with
// kfctl, waits for the deployment to become ready and then runs the test
// suite as its own sub-graph. An exit handler tears the deployment down,
// copies the artifacts to GCS and removes the test directory whatever the
// outcome of the main run.
//
// Directory locations are derived from the workflow name (see Layout) and
// exposed to the HCL configuration as `var.<name>` variables, so the
// environment file can refer to them.
package e2e
