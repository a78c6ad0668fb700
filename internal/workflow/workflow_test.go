package workflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/argoflow/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
)

func testTemplate() *task.Template {
	return task.NewTemplate(&task.Task{
		Image:  "gcr.io/kubeflow-ci/test-worker:latest",
		Env:    map[string]string{"K": "a", "GOPATH": "/go"},
		Labels: map[string]string{"workflow_template": "kfctl_e2e"},
	})
}

func mustSubgraph(t *testing.T, p *Pipeline, name string) *Subgraph {
	t.Helper()
	sg, err := p.Subgraph(name)
	require.NoError(t, err)
	return sg
}

func TestNew_CreatesCanonicalSubgraphs(t *testing.T) {
	t.Parallel()

	p := New("wf")

	assert.Equal(t, EntryDAG, p.Entry)
	assert.Equal(t, ExitDAG, p.Exit)
	names := []string{}
	for _, sg := range p.Subgraphs() {
		names = append(names, sg.Name())
		assert.Zero(t, sg.Len())
	}
	assert.Equal(t, []string{EntryDAG, TestsDAG, ExitDAG}, names)
	require.NoError(t, p.Validate())
}

func TestSubgraph_NotFound(t *testing.T) {
	t.Parallel()

	_, err := New("wf").Subgraph("nope")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nope", nf.Subgraph)
}

func TestDeclare_IsAdditive(t *testing.T) {
	t.Parallel()

	p := New("wf")
	extra := p.Declare("extra")
	_, err := extra.AddTask(testTemplate(), "a", nil, nil, nil)
	require.NoError(t, err)

	again := p.Declare("extra")

	assert.Same(t, extra, again)
	assert.Equal(t, 1, again.Len())
	assert.Len(t, p.Subgraphs(), 4)
}

func TestAddTask_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p := New("wf")
	main := mustSubgraph(t, p, EntryDAG)
	tmpl := testTemplate()

	// --- Act ---
	checkout, err := main.AddTask(tmpl, "checkout", []string{"checkout_repos.sh"}, nil, nil)
	require.NoError(t, err)
	build, err := main.AddTask(tmpl, "build", []string{"make"}, []string{checkout.Name}, map[string]string{"K": "b"})
	require.NoError(t, err)

	// --- Assert ---
	assert.Equal(t, 2, main.Len())
	assert.Empty(t, checkout.Dependencies)
	assert.Equal(t, []string{"checkout"}, build.Dependencies)
	assert.Equal(t, []string{"make"}, build.Command)
	assert.Equal(t, "b", build.Env["K"])
	assert.Equal(t, "/go", build.Env["GOPATH"])
	assert.Equal(t, "a", checkout.Env["K"])

	got, ok := main.Task("build")
	require.True(t, ok)
	assert.Same(t, build, got)
}

func TestAddTask_DoesNotMutateTemplateOrEarlierTasks(t *testing.T) {
	t.Parallel()

	p := New("wf")
	main := mustSubgraph(t, p, EntryDAG)
	tmpl := testTemplate()
	before := tmpl.Clone()

	first, err := main.AddTask(tmpl, "first", []string{"a"}, nil, nil)
	require.NoError(t, err)
	firstBefore := first.DeepCopy()

	_, err = main.AddTask(tmpl, "second", []string{"b"}, []string{"first"}, map[string]string{"K": "z", "NEW": "1"})
	require.NoError(t, err)

	if diff := cmp.Diff(before, tmpl.Clone()); diff != "" {
		t.Errorf("template mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(firstBefore, first); diff != "" {
		t.Errorf("earlier task mutated (-want +got):\n%s", diff)
	}
}

func TestAddTask_CopiesArguments(t *testing.T) {
	t.Parallel()

	main := mustSubgraph(t, New("wf"), EntryDAG)
	_, err := main.AddTask(testTemplate(), "a", nil, nil, nil)
	require.NoError(t, err)

	cmd := []string{"echo", "hi"}
	deps := []string{"a"}
	b, err := main.AddTask(testTemplate(), "b", cmd, deps, nil)
	require.NoError(t, err)

	cmd[0] = "rm"
	deps[0] = "zzz"
	assert.Equal(t, []string{"echo", "hi"}, b.Command)
	assert.Equal(t, []string{"a"}, b.Dependencies)
}

func TestAddTask_DuplicateName(t *testing.T) {
	t.Parallel()

	main := mustSubgraph(t, New("wf"), EntryDAG)
	_, err := main.AddTask(testTemplate(), "checkout", nil, nil, nil)
	require.NoError(t, err)

	// Whatever else is passed, the name clash wins.
	argSets := []struct {
		cmd  []string
		deps []string
		env  map[string]string
	}{
		{nil, nil, nil},
		{[]string{"other"}, []string{"checkout"}, map[string]string{"X": "1"}},
		{[]string{"other"}, []string{"missing"}, nil},
	}
	for i, args := range argSets {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := main.AddTask(testTemplate(), "checkout", args.cmd, args.deps, args.env)
			var dup *DuplicateNameError
			require.True(t, errors.As(err, &dup), "got %v", err)
			assert.Equal(t, "checkout", dup.Name)
			assert.Equal(t, EntryDAG, dup.Subgraph)
		})
	}
	assert.Equal(t, 1, main.Len())
}

func TestAddTask_UnknownPredecessor(t *testing.T) {
	t.Parallel()

	p := New("wf")
	main := mustSubgraph(t, p, EntryDAG)
	tests := mustSubgraph(t, p, TestsDAG)
	_, err := tests.AddTask(testTemplate(), "in-other-subgraph", nil, nil, nil)
	require.NoError(t, err)

	testCases := []struct {
		name string
		deps []string
		want string
	}{
		{"never added", []string{"ghost"}, "ghost"},
		{"self", []string{"build"}, "build"},
		{"lives in another sub-graph", []string{"in-other-subgraph"}, "in-other-subgraph"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := main.AddTask(testTemplate(), "build", nil, tc.deps, nil)
			var unknown *UnknownPredecessorError
			require.True(t, errors.As(err, &unknown), "got %v", err)
			assert.Equal(t, tc.want, unknown.Predecessor)
		})
	}
	assert.Zero(t, main.Len())
}

func TestAddTask_ForwardReferenceRejected(t *testing.T) {
	t.Parallel()

	main := mustSubgraph(t, New("wf"), EntryDAG)

	_, err := main.AddTask(testTemplate(), "deploy", nil, []string{"build"}, nil)
	var unknown *UnknownPredecessorError
	require.True(t, errors.As(err, &unknown))

	_, err = main.AddTask(testTemplate(), "build", nil, nil, nil)
	require.NoError(t, err)
	_, err = main.AddTask(testTemplate(), "deploy", nil, []string{"build"}, nil)
	require.NoError(t, err)
}

func TestAddSubgraphAsTask_Encapsulation(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p := New("wf")
	main := mustSubgraph(t, p, EntryDAG)
	tests := mustSubgraph(t, p, TestsDAG)
	tmpl := testTemplate()

	_, err := main.AddTask(tmpl, "checkout", nil, nil, nil)
	require.NoError(t, err)
	_, err = tests.AddTask(tmpl, "A", nil, nil, nil)
	require.NoError(t, err)

	// --- Act ---
	node, err := main.AddSubgraphAsTask(TestsDAG, []string{"checkout"})
	require.NoError(t, err)

	// Tasks added to the tests sub-graph afterwards stay invisible to main.
	_, err = tests.AddTask(tmpl, "B", nil, []string{"A"}, nil)
	require.NoError(t, err)

	// --- Assert ---
	assert.True(t, node.IsReference())
	assert.Equal(t, TestsDAG, node.Name)
	assert.Equal(t, []string{"checkout"}, node.Dependencies())
	assert.Equal(t, 2, main.Len())
	assert.Equal(t, 2, tests.Len())

	_, isTask := main.Task(TestsDAG)
	assert.False(t, isTask)
	got, ok := main.Node(TestsDAG)
	require.True(t, ok)
	assert.Same(t, node, got)

	// Dependents in main refer to the sub-graph by its name only.
	_, err = main.AddTask(tmpl, "after-tests", nil, []string{TestsDAG}, nil)
	require.NoError(t, err)
}

func TestAddSubgraphAsTask_Errors(t *testing.T) {
	t.Parallel()

	t.Run("duplicate", func(t *testing.T) {
		p := New("wf")
		main := mustSubgraph(t, p, EntryDAG)
		_, err := main.AddSubgraphAsTask(TestsDAG, nil)
		require.NoError(t, err)
		_, err = main.AddSubgraphAsTask(TestsDAG, nil)
		var dup *DuplicateNameError
		require.True(t, errors.As(err, &dup))
	})

	t.Run("unknown predecessor", func(t *testing.T) {
		main := mustSubgraph(t, New("wf"), EntryDAG)
		_, err := main.AddSubgraphAsTask(TestsDAG, []string{"kubeflow-is-ready"})
		var unknown *UnknownPredecessorError
		require.True(t, errors.As(err, &unknown))
	})

	t.Run("undeclared sub-graph", func(t *testing.T) {
		main := mustSubgraph(t, New("wf"), EntryDAG)
		_, err := main.AddSubgraphAsTask("nope", nil)
		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Zero(t, main.Len())
	})

	t.Run("self", func(t *testing.T) {
		exit := mustSubgraph(t, New("wf"), ExitDAG)
		_, err := exit.AddSubgraphAsTask(ExitDAG, nil)
		var self *SelfReferenceError
		require.True(t, errors.As(err, &self))
	})

	t.Run("indirect cycle", func(t *testing.T) {
		p := New("wf")
		main := mustSubgraph(t, p, EntryDAG)
		tests := mustSubgraph(t, p, TestsDAG)
		_, err := main.AddSubgraphAsTask(TestsDAG, nil)
		require.NoError(t, err)

		_, err = tests.AddSubgraphAsTask(EntryDAG, nil)
		var self *SelfReferenceError
		require.True(t, errors.As(err, &self))
		assert.Equal(t, []string{TestsDAG, EntryDAG, TestsDAG}, self.Path)
		require.NoError(t, p.Validate())
	})
}

func TestApplyLabels_Idempotent(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p := New("wf")
	main := mustSubgraph(t, p, EntryDAG)
	exit := mustSubgraph(t, p, ExitDAG)
	a, err := main.AddTask(testTemplate(), "a", nil, nil, nil)
	require.NoError(t, err)
	_, err = main.AddSubgraphAsTask(TestsDAG, []string{"a"})
	require.NoError(t, err)
	b, err := exit.AddTask(testTemplate(), "b", nil, nil, nil)
	require.NoError(t, err)
	labels := map[string]string{"workflow": "wf", "workflow_template": "kfctl_e2e"}

	// --- Act ---
	p.ApplyLabels(labels)
	onceA, onceB := a.DeepCopy().Labels, b.DeepCopy().Labels
	p.ApplyLabels(labels)

	// --- Assert ---
	assert.Equal(t, onceA, a.Labels)
	assert.Equal(t, onceB, b.Labels)
	assert.Equal(t, "wf", a.Labels["workflow"])
	assert.Equal(t, "wf", b.Labels["workflow"])
}

func TestApplyLabels_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	p := New("wf")
	a, err := mustSubgraph(t, p, EntryDAG).AddTask(testTemplate(), "a", nil, nil, nil)
	require.NoError(t, err)

	labels := map[string]string{"workflow": "wf"}
	p.ApplyLabels(labels)
	labels["workflow"] = "changed"

	assert.Equal(t, "wf", a.Labels["workflow"])
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("missing entry", func(t *testing.T) {
		p := New("wf")
		p.Entry = "nope"
		var nf *NotFoundError
		require.True(t, errors.As(p.Validate(), &nf))
	})

	t.Run("missing exit", func(t *testing.T) {
		p := New("wf")
		p.Exit = "nope"
		var nf *NotFoundError
		require.True(t, errors.As(p.Validate(), &nf))
	})

	t.Run("no exit", func(t *testing.T) {
		p := New("wf")
		p.Exit = ""
		require.NoError(t, p.Validate())
	})
}

func TestAddVolumes_Deduplicates(t *testing.T) {
	t.Parallel()

	p := New("wf")
	vol := corev1.Volume{Name: "gcp-credentials", VolumeSource: corev1.VolumeSource{
		Secret: &corev1.SecretVolumeSource{SecretName: "kubeflow-testing-credentials"},
	}}

	p.AddVolumes(vol, vol)
	p.AddVolumes(vol)

	require.Len(t, p.Volumes, 1)
	vol.Secret.SecretName = "changed"
	assert.Equal(t, "kubeflow-testing-credentials", p.Volumes[0].Secret.SecretName)
}
