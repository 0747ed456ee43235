package kubectl

import (
	"fmt"

	"k8s.io/client-go/tools/clientcmd"
)

// ResolveKubeconfig returns the kubeconfig path kubectl will effectively
// use: the explicit path when set, otherwise the default loading rules
// (the KUBECONFIG environment list, falling back to ~/.kube/config). The
// path is resolved for diagnostics and logging only; it is never loaded to
// build an API client.
func ResolveKubeconfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return clientcmd.NewDefaultClientConfigLoadingRules().GetDefaultFilename()
}

// CurrentContext reads the active context name from the kubeconfig at path.
// Used by health reporting; a missing or malformed kubeconfig is an error
// for the caller to surface, not a lifecycle failure.
func CurrentContext(path string) (string, error) {
	config, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig %s: %w", path, err)
	}
	return config.CurrentContext, nil
}
