package e2e

import (
	"fmt"
	"maps"
	"os"
	"strings"
)

// ProwVars are the job variables prow sets on every run.
var ProwVars = []string{
	"JOB_NAME",
	"JOB_TYPE",
	"BUILD_ID",
	"PULL_NUMBER",
	"REPO_OWNER",
	"REPO_NAME",
	"PULL_BASE_SHA",
	"PULL_PULL_SHA",
}

// Prow is the set of prow job variables that were present, keyed by
// variable name.
type Prow map[string]string

// ProwFromEnv reads the prow variables of the current process.
func ProwFromEnv() Prow {
	return ProwFromLookup(os.LookupEnv)
}

// ProwFromLookup reads the prow variables through lookup. Unset and empty
// variables are skipped.
func ProwFromLookup(lookup func(string) (string, bool)) Prow {
	p := Prow{}
	for _, k := range ProwVars {
		if v, ok := lookup(k); ok && v != "" {
			p[k] = v
		}
	}
	return p
}

// Labels returns the variables as workflow labels with lower-cased keys.
func (p Prow) Labels() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Env returns the variables to pass through to every step.
func (p Prow) Env() map[string]string {
	return maps.Clone(map[string]string(p))
}

// Repo returns the repository under test in checkout notation, or "" when
// prow did not say which repository triggered the job.
func (p Prow) Repo() string {
	owner, name := p["REPO_OWNER"], p["REPO_NAME"]
	if owner == "" || name == "" {
		return ""
	}
	repo := owner + "/" + name
	if pr := p["PULL_NUMBER"]; pr != "" {
		sha := p["PULL_PULL_SHA"]
		if sha == "" {
			sha = "HEAD"
		}
		return fmt.Sprintf("%s@%s:%s", repo, sha, pr)
	}
	if sha := p["PULL_BASE_SHA"]; sha != "" {
		return repo + "@" + sha
	}
	return repo + "@HEAD"
}
