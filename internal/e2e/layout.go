package e2e

import (
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// DefaultMountPath is where the shared test-data volume is mounted.
const DefaultMountPath = "/mnt/test-data-volume"

// Layout holds the directory locations of one workflow run.
type Layout struct {
	Name string
	// AppName names the Kubeflow deployment. It must be unique per run
	// because GCP resources are named after it.
	AppName string

	MountPath         string
	TestDir           string
	OutputDir         string
	ArtifactsDir      string
	SrcRootDir        string
	SrcDir            string
	KubeflowTestingPy string
	TFOperatorRoot    string
	TFOperatorPy      string
	AppDir            string
	KfctlPath         string
}

// NewLayout derives every location from the workflow name.
func NewLayout(name, appName string) Layout {
	l := Layout{Name: name, AppName: appName, MountPath: DefaultMountPath}
	l.TestDir = path.Join(l.MountPath, name)
	l.OutputDir = path.Join(l.TestDir, "output")
	// Spyglass only picks up artifact directories prefixed with junit.
	l.ArtifactsDir = path.Join(l.OutputDir, "artifacts", "junit_"+name)
	l.SrcRootDir = path.Join(l.TestDir, "src")
	l.SrcDir = path.Join(l.SrcRootDir, "kubeflow", "kubeflow")
	l.KubeflowTestingPy = path.Join(l.SrcRootDir, "kubeflow", "testing", "py")
	l.TFOperatorRoot = path.Join(l.SrcRootDir, "kubeflow", "tf-operator")
	l.TFOperatorPy = path.Join(l.TFOperatorRoot, "py")
	l.AppDir = path.Join(l.TestDir, "apps", appName)
	l.KfctlPath = path.Join(l.SrcDir, "bootstrap", "bin", "kfctl")
	return l
}

// Vars exposes the layout to configuration files.
func (l Layout) Vars() map[string]string {
	return map[string]string{
		"name":                l.Name,
		"app_name":            l.AppName,
		"mount_path":          l.MountPath,
		"test_dir":            l.TestDir,
		"output_dir":          l.OutputDir,
		"artifacts_dir":       l.ArtifactsDir,
		"src_root_dir":        l.SrcRootDir,
		"src_dir":             l.SrcDir,
		"kubeflow_testing_py": l.KubeflowTestingPy,
		"tf_operator_root":    l.TFOperatorRoot,
		"tf_operator_py":      l.TFOperatorPy,
		"app_dir":             l.AppDir,
		"kfctl_path":          l.KfctlPath,
	}
}

// NewAppName returns kfctl-<timestamp>-<3 hex chars of id>.
func NewAppName(now time.Time, id uuid.UUID) string {
	hex := id.String()
	return fmt.Sprintf("kfctl-%s-%s", now.Format("20060102-150405"), hex[:3])
}
