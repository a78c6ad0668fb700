package hcl

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Workflows    []*workflowBlock    `hcl:"workflow,block"`
	Environments []*environmentBlock `hcl:"environment,block"`
}

type workflowBlock struct {
	Namespace    string            `hcl:"namespace,optional"`
	Bucket       string            `hcl:"bucket,optional"`
	ConfigPath   string            `hcl:"config_path,optional"`
	MainRepo     string            `hcl:"main_repo,optional"`
	ExtraRepos   []string          `hcl:"extra_repos,optional"`
	TestEndpoint bool              `hcl:"test_endpoint,optional"`
	UseBasicAuth bool              `hcl:"use_basic_auth,optional"`
	TTL          string            `hcl:"ttl,optional"`
	Labels       map[string]string `hcl:"labels,optional"`
}

type environmentBlock struct {
	Name            string            `hcl:"name,label"`
	Image           string            `hcl:"image"`
	ImagePullPolicy string            `hcl:"image_pull_policy,optional"`
	WorkingDir      string            `hcl:"working_dir,optional"`
	Deadline        string            `hcl:"deadline,optional"`
	Limits          *resourcesBlock   `hcl:"limits,block"`
	Requests        *resourcesBlock   `hcl:"requests,block"`
	Volumes         []*volumeBlock    `hcl:"volume,block"`
	Env             map[string]string `hcl:"env,optional"`
	Labels          map[string]string `hcl:"labels,optional"`
}

type resourcesBlock struct {
	CPU    string `hcl:"cpu"`
	Memory string `hcl:"memory"`
}

type volumeBlock struct {
	Name      string `hcl:"name,label"`
	MountPath string `hcl:"mount_path"`
	Claim     string `hcl:"claim,optional"`
	Secret    string `hcl:"secret,optional"`
}
