package task

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

func newProto() *Task {
	return &Task{
		Name:    "",
		Command: []string{},
		Image:   "gcr.io/kubeflow-ci/test-worker:latest",
		Resources: corev1.ResourceRequirements{
			Limits: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("4"),
				corev1.ResourceMemory: resource.MustParse("4Gi"),
			},
			Requests: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("1"),
				corev1.ResourceMemory: resource.MustParse("1536Mi"),
			},
		},
		VolumeMounts: []corev1.VolumeMount{
			{Name: "kubeflow-test-volume", MountPath: "/mnt/test-data-volume"},
		},
		Env:      map[string]string{"GOPATH": "/mnt/test-data-volume/wf"},
		Labels:   map[string]string{"workflow_template": "kfctl_e2e"},
		Deadline: 50 * time.Minute,
	}
}

func TestClone_IsolatedFromTemplate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tmpl := NewTemplate(newProto())
	before := tmpl.Clone()

	// --- Act ---
	clone := tmpl.Clone()
	clone.Name = "checkout"
	clone.Command = append(clone.Command, "/usr/local/bin/checkout_repos.sh")
	clone.Env["GOPATH"] = "/elsewhere"
	clone.Env["EXTRA"] = "1"
	clone.Labels["step"] = "checkout"
	clone.VolumeMounts[0].MountPath = "/tmp"
	clone.Resources.Limits[corev1.ResourceCPU] = resource.MustParse("16")
	clone.Dependencies = append(clone.Dependencies, "root")

	// --- Assert ---
	after := tmpl.Clone()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("template changed after mutating a clone (-before +after):\n%s", diff)
	}
}

func TestClone_SiblingsAreIndependent(t *testing.T) {
	t.Parallel()

	tmpl := NewTemplate(newProto())
	a := tmpl.Clone()
	b := tmpl.Clone()

	a.Env["GOPATH"] = "/a"

	assert.Equal(t, "/mnt/test-data-volume/wf", b.Env["GOPATH"])
}

func TestNewTemplate_CopiesPrototype(t *testing.T) {
	t.Parallel()

	proto := newProto()
	tmpl := NewTemplate(proto)

	proto.Image = "changed"
	proto.Env["GOPATH"] = "changed"

	clone := tmpl.Clone()
	assert.Equal(t, "gcr.io/kubeflow-ci/test-worker:latest", clone.Image)
	assert.Equal(t, "/mnt/test-data-volume/wf", clone.Env["GOPATH"])
}

func TestDerive_LeavesParentUntouched(t *testing.T) {
	t.Parallel()

	parent := NewTemplate(newProto())
	child := parent.Derive(func(t *Task) { t.WorkingDir = "/src/testing/kfctl" })

	assert.Empty(t, parent.Clone().WorkingDir)
	assert.Equal(t, "/src/testing/kfctl", child.Clone().WorkingDir)
}

func TestMergeEnv_RightBiased(t *testing.T) {
	t.Parallel()

	tk := &Task{Env: map[string]string{"K": "a", "KEEP": "x"}}
	tk.MergeEnv(map[string]string{"K": "b"})

	assert.Equal(t, map[string]string{"K": "b", "KEEP": "x"}, tk.Env)
}

func TestMergeEnv_NilEnv(t *testing.T) {
	t.Parallel()

	tk := &Task{}
	tk.MergeEnv(map[string]string{"K": "b"})

	require.NotNil(t, tk.Env)
	assert.Equal(t, "b", tk.Env["K"])
}

func TestMergeLabels_Idempotent(t *testing.T) {
	t.Parallel()

	labels := map[string]string{"workflow": "wf-1", "workflow_template": "kfctl_e2e"}
	tk := &Task{Labels: map[string]string{"step": "checkout"}}

	tk.MergeLabels(labels)
	once := map[string]string{}
	for k, v := range tk.Labels {
		once[k] = v
	}
	tk.MergeLabels(labels)

	assert.Equal(t, once, tk.Labels)
}

func TestMountsVolume(t *testing.T) {
	t.Parallel()

	tk := newProto()
	assert.True(t, tk.MountsVolume("kubeflow-test-volume"))
	assert.False(t, tk.MountsVolume("gcp-credentials"))
}

func TestDeepCopy_Nil(t *testing.T) {
	t.Parallel()

	var tk *Task
	assert.Nil(t, tk.DeepCopy())
}
