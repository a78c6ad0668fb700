package e2e

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path"
	"strings"

	"github.com/specialistvlad/argoflow/internal/config"
	"github.com/specialistvlad/argoflow/internal/ctxlog"
	"github.com/specialistvlad/argoflow/internal/task"
	"github.com/specialistvlad/argoflow/internal/tasktemplate"
	"github.com/specialistvlad/argoflow/internal/workflow"
)

const (
	// TemplateLabel is the workflow_template label value of every workflow
	// built here.
	TemplateLabel = "kfctl_e2e"
	// DefaultMainRepo is checked out when neither prow nor the config name
	// the repository under test.
	DefaultMainRepo = "kubeflow/kubeflow@HEAD"
	// StepsNamespace is where the tests create their Kubeflow resources.
	StepsNamespace = "kubeflow"
)

// Option configures a Builder.
type Option func(*Builder)

// WithProw sets the prow job variables. Without it the builder behaves as if
// it ran outside prow.
func WithProw(p Prow) Option {
	return func(b *Builder) { b.prow = p }
}

// Builder assembles the kfctl E2E pipeline.
type Builder struct {
	layout Layout
	wf     *config.Workflow
	env    *config.Environment
	prow   Prow

	configName string
}

// NewBuilder creates a builder for one workflow run.
func NewBuilder(layout Layout, wf *config.Workflow, env *config.Environment, opts ...Option) (*Builder, error) {
	if layout.Name == "" {
		return nil, errors.New("workflow name is required")
	}
	if wf == nil {
		return nil, errors.New("workflow settings are required")
	}
	if env == nil {
		return nil, errors.New("environment is required")
	}
	b := &Builder{
		layout: layout,
		wf:     wf,
		env:    env,
		prow:   Prow{},
	}
	for _, opt := range opts {
		opt(b)
	}
	base := path.Base(wf.ConfigPath)
	b.configName = strings.TrimSuffix(base, path.Ext(base))
	return b, nil
}

// Build assembles and validates the pipeline.
func (b *Builder) Build(ctx context.Context) (*workflow.Pipeline, error) {
	logger := ctxlog.FromContext(ctx).With("workflow", b.layout.Name)

	base, err := tasktemplate.Build(b.env)
	if err != nil {
		return nil, fmt.Errorf("failed to build task template: %w", err)
	}
	base = base.Derive(func(t *task.Task) { t.MergeEnv(b.prow.Env()) })

	p := workflow.New(b.layout.Name)
	p.Namespace = b.wf.Namespace
	p.TTL = b.wf.TTL
	p.AddVolumes(tasktemplate.Volumes(b.env)...)
	p.Labels = b.workflowLabels()

	if err := b.buildMain(ctx, p, base); err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", workflow.EntryDAG, err)
	}
	if err := b.buildExit(p, base); err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", workflow.ExitDAG, err)
	}

	p.ApplyLabels(p.Labels)
	for _, sg := range p.Subgraphs() {
		for _, n := range sg.Nodes() {
			if n.Task != nil {
				n.Task.MergeLabels(map[string]string{"step_name": n.Name})
			}
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	logger.Info("Built workflow.", "app", b.layout.AppName, "subgraphs", len(p.Subgraphs()))
	return p, nil
}

func (b *Builder) workflowLabels() map[string]string {
	labels := maps.Clone(b.wf.Labels)
	if labels == nil {
		labels = map[string]string{}
	}
	maps.Copy(labels, b.prow.Labels())
	labels["workflow"] = b.layout.Name
	labels["workflow_template"] = TemplateLabel
	return labels
}

func (b *Builder) repos() []string {
	main := b.prow.Repo()
	if main == "" {
		main = b.wf.MainRepo
	}
	if main == "" {
		main = DefaultMainRepo
	}
	return append([]string{main}, b.wf.ExtraRepos...)
}

func (b *Builder) buildMain(ctx context.Context, p *workflow.Pipeline, base *task.Template) error {
	l := b.layout
	sg, err := p.Subgraph(workflow.EntryDAG)
	if err != nil {
		return err
	}

	repos := b.repos()
	ctxlog.FromContext(ctx).Debug("Checking out repositories.", "repos", repos)
	if _, err := sg.AddTask(base, "checkout", []string{
		"/usr/local/bin/checkout_repos.sh",
		"--repos=" + strings.Join(repos, ","),
		"--src_dir=" + l.SrcRootDir,
	}, nil, nil); err != nil {
		return err
	}

	// Everything after the checkout runs from the kfctl test directory.
	tmpl := base.Derive(func(t *task.Task) {
		t.WorkingDir = path.Join(l.SrcDir, "testing", "kfctl")
	})

	if _, err := sg.AddTask(tmpl, "kfctl-build-deploy", []string{
		"pytest",
		"kfctl_go_test.py",
		"-s",
		"--config_path=" + b.wf.ConfigPath,
		"--log-cli-level=info",
		"--junitxml=" + l.ArtifactsDir + "/junit_kfctl-build-test" + b.configName + ".xml",
		"-o", "junit_suite_name=test_kfctl_go_deploy_" + b.configName,
		"--app_path=" + l.AppDir,
	}, []string{"checkout"}, nil); err != nil {
		return err
	}

	if _, err := sg.AddTask(tmpl, "kubeflow-is-ready", []string{
		"pytest",
		"kf_is_ready_test.py",
		"-s",
		fmt.Sprintf("--use_basic_auth=%t", b.wf.UseBasicAuth),
		"--use_istio=true",
		"--log-cli-level=info",
		"--junitxml=" + path.Join(l.ArtifactsDir, "junit_kfctl-is-ready-test-"+b.configName+".xml"),
		"-o", "junit_suite_name=test_kf_is_ready_" + b.configName,
		"--app_path=" + l.AppDir,
	}, []string{"kfctl-build-deploy"}, nil); err != nil {
		return err
	}

	// The endpoint check has no predecessors and races the deployment; it is
	// expected to retry until the endpoint comes up.
	if b.wf.TestEndpoint {
		if _, err := sg.AddTask(tmpl, "endpoint-is-ready", []string{
			"pytest",
			"endpoint_ready_test.py",
			"-s",
			"--log-cli-level=info",
			"--junitxml=" + l.ArtifactsDir + "/junit_endpoint-is-ready-test-" + b.configName + ".xml",
			"-o", "junit_suite_name=test_endpoint_is_ready_" + b.configName,
			"--app_path=" + l.AppDir,
			"--app_name=" + l.AppName,
		}, nil, nil); err != nil {
			return err
		}
	}

	if err := b.buildTests(p, base); err != nil {
		return fmt.Errorf("failed to build %s: %w", workflow.TestsDAG, err)
	}
	if _, err := sg.AddSubgraphAsTask(workflow.TestsDAG, []string{"kubeflow-is-ready"}); err != nil {
		return err
	}

	_, err = sg.AddTask(tmpl, "create-pr-symlink", []string{
		"python",
		"-m",
		"kubeflow.testing.prow_artifacts",
		"--artifacts_dir=" + l.OutputDir,
		"create_pr_symlink",
		"--bucket=" + b.wf.Bucket,
	}, []string{"checkout"}, nil)
	return err
}

func (b *Builder) buildTests(p *workflow.Pipeline, base *task.Template) error {
	l := b.layout
	sg, err := p.Subgraph(workflow.TestsDAG)
	if err != nil {
		return err
	}

	tfjob := func(version string) []string {
		return []string{
			"python",
			"-m",
			"kubeflow.tf_operator.simple_tfjob_tests",
			"--app_dir=" + path.Join(l.TFOperatorRoot, "test", "workflows"),
			"--tfjob_version=" + version,
			// The name doubles as the test case name and must be unique
			// across all E2E tests.
			"--params=name=smoke-tfjob-" + b.configName + ",namespace=" + StepsNamespace,
			"--artifacts_path=" + l.ArtifactsDir,
			"--skip_tests=test_simple_tfjob_gpu",
		}
	}
	deploy := func(deployName string, extra ...string) []string {
		cmd := []string{
			"python",
			"-m",
			"testing.test_deploy",
			"--project=kubeflow-ci",
			"--namespace=" + StepsNamespace,
			"--test_dir=" + l.TestDir,
			"--artifacts_dir=" + l.ArtifactsDir,
			"--deploy_name=" + deployName,
			"--workflow_name=" + l.Name,
		}
		return append(cmd, extra...)
	}

	steps := []struct {
		name    string
		command []string
	}{
		{"tfjob-test", tfjob("v1")},
		{"tfjob-v1beta2", tfjob("v1beta2")},
		{"test-katib-deploy", deploy("test-katib", "test_katib")},
		{"pytorch-job-deploy", deploy("pytorch-job", "deploy_pytorchjob", "--params=image=pytorch/pytorch:v0.2,num_workers=1")},
		{"tfjob-simple", []string{
			"python",
			"-m",
			"testing.tf_job_simple_test",
			"--src_dir=" + l.SrcDir,
			"--tf_job_version=v1",
			"--test_dir=" + l.TestDir,
			"--artifacts_dir=" + l.ArtifactsDir,
		}},
		{"notebook-test", []string{
			"pytest",
			"-s",
			"jupyter_test.py",
			"--namespace=" + StepsNamespace,
			"--timeout=500",
			"--junitxml=" + l.ArtifactsDir + "/junit_jupyter-test.xml",
		}},
	}
	for _, s := range steps {
		if _, err := sg.AddTask(base, s.name, s.command, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildExit(p *workflow.Pipeline, base *task.Template) error {
	l := b.layout
	sg, err := p.Subgraph(workflow.ExitDAG)
	if err != nil {
		return err
	}
	tmpl := base.Derive(func(t *task.Task) { t.WorkingDir = l.KfctlPath })

	if _, err := sg.AddTask(tmpl, "kfctl-delete", []string{
		"pytest",
		"kfctl_delete_test.py",
		"-s",
		"--log-cli-level=info",
		"--timeout=1000",
		"--junitxml=" + l.ArtifactsDir + "/junit_kfctl-go-delete-test.xml",
		"--app_path=" + l.AppDir,
		"--kfctl_path=" + l.KfctlPath,
	}, nil, nil); err != nil {
		return err
	}

	if _, err := sg.AddTask(tmpl, "copy-artifacts", []string{
		"python",
		"-m",
		"kubeflow.testing.prow_artifacts",
		"--artifacts_dir=" + l.OutputDir,
		"copy_artifacts",
		"--bucket=" + b.wf.Bucket,
		"--suffix=fakesuffix",
	}, []string{"kfctl-delete"}, nil); err != nil {
		return err
	}

	_, err = sg.AddTask(tmpl, "test-dir-delete", []string{
		"python",
		"-m",
		"testing.run_with_retry",
		"--retries=5",
		"--",
		"rm",
		"-rf",
		l.TestDir,
	}, []string{"copy-artifacts"}, nil)
	return err
}
