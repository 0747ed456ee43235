package kubectl

import (
	"strconv"
	"strings"
)

// BuildArgs assembles the argument vector for one invocation of verb against
// the targets in spec. The vector excludes the binary itself. Emission order
// is fixed; kubectl is sensitive to the position of bare tokens.
//
// When probe is true the vector is an existence check: only the first
// resource type is emitted (existence is checked per primary type) and
// key=value overrides are dropped (presence needs no overrides).
//
// Fails with ConfigError when the spec names neither a resource type nor a
// manifest file, since there is nothing to address the invocation at.
func BuildArgs(spec *Spec, verb string, probe bool) ([]string, error) {
	if len(spec.Filenames) == 0 && len(spec.Resources) == 0 {
		return nil, &ConfigError{Reason: "filename or resource required"}
	}

	args := []string{verb}

	if len(spec.Resources) > 0 {
		if probe {
			args = append(args, spec.Resources[0])
		} else {
			args = append(args, spec.Resources...)
		}
	}
	if spec.Name != "" {
		args = append(args, spec.Name)
	}
	if len(spec.KeyVars) > 0 && !probe {
		args = append(args, spec.KeyVars...)
	}
	if len(spec.Filenames) > 0 {
		args = append(args, "--filename="+strings.Join(spec.Filenames, ","))
	}
	if spec.Kubeconfig != "" {
		args = append(args, "--kubeconfig="+spec.Kubeconfig)
	}
	if spec.Namespace != "" {
		args = append(args, "--namespace="+spec.Namespace)
	}
	if spec.Selector != "" {
		args = append(args, "--selector="+spec.Selector)
	}
	if spec.Server != "" {
		args = append(args, "--server="+spec.Server)
	}
	if spec.IgnoreNotFound {
		args = append(args, "--ignore-not-found")
	}
	if spec.Overwrite {
		args = append(args, "--overwrite")
	}
	if spec.Force {
		args = append(args, "--force")
	}
	if spec.All {
		args = append(args, "--all")
	}
	if spec.LogLevel != 0 {
		args = append(args, "--v="+strconv.Itoa(spec.LogLevel))
	}

	// get output must stay machine-parseable, one line per resource.
	if args[0] == "get" {
		args = append(args, "--no-headers")
	}

	return args, nil
}
