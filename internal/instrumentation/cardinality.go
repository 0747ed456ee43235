package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Verbs and resource types come straight from tool arguments, so without a
// gate a caller could mint one metric series per typo. Always use these
// helpers when recording metrics from request-supplied values.

// VerbClass represents a classification of kubectl verbs for metrics.
type VerbClass string

// Verb classifications for metrics cardinality control.
const (
	// VerbClassRead represents read-only verbs (get, describe, logs, ...).
	VerbClassRead VerbClass = "read"

	// VerbClassWrite represents mutating verbs (apply, create, delete, ...).
	VerbClassWrite VerbClass = "write"

	// VerbClassOther represents verbs that don't match any known pattern.
	VerbClassOther VerbClass = "other"
)

// readVerbs are the kubectl verbs that never mutate cluster state.
var readVerbs = map[string]struct{}{
	"api-resources": {},
	"api-versions":  {},
	"auth":          {},
	"cluster-info":  {},
	"describe":      {},
	"diff":          {},
	"explain":       {},
	"get":           {},
	"logs":          {},
	"top":           {},
	"version":       {},
	"wait":          {},
}

// writeVerbs are the kubectl verbs known to mutate cluster state.
var writeVerbs = map[string]struct{}{
	"annotate":  {},
	"apply":     {},
	"autoscale": {},
	"cordon":    {},
	"create":    {},
	"delete":    {},
	"drain":     {},
	"edit":      {},
	"expose":    {},
	"label":     {},
	"patch":     {},
	"replace":   {},
	"rollout":   {},
	"run":       {},
	"scale":     {},
	"set":       {},
	"taint":     {},
	"uncordon":  {},
}

// ClassifyVerb maps a kubectl verb to a bounded label value. Known verbs pass
// through unchanged; anything else collapses to "other" so request-supplied
// strings cannot mint new metric series.
//
// # Examples
//
//	ClassifyVerb("apply")        // "apply"
//	ClassifyVerb("get")          // "get"
//	ClassifyVerb("Apply")        // "apply"
//	ClassifyVerb("my-plugin-op") // "other"
//	ClassifyVerb("")             // "other"
func ClassifyVerb(verb string) string {
	verbLower := strings.ToLower(strings.TrimSpace(verb))
	if _, ok := readVerbs[verbLower]; ok {
		return verbLower
	}
	if _, ok := writeVerbs[verbLower]; ok {
		return verbLower
	}
	return string(VerbClassOther)
}

// ClassifyVerbAccess reports whether a verb is read-only, mutating, or
// unknown. Useful as an even lower-cardinality label than the verb itself.
func ClassifyVerbAccess(verb string) VerbClass {
	verbLower := strings.ToLower(strings.TrimSpace(verb))
	if _, ok := readVerbs[verbLower]; ok {
		return VerbClassRead
	}
	if _, ok := writeVerbs[verbLower]; ok {
		return VerbClassWrite
	}
	return VerbClassOther
}

// resourceAliases maps kubectl short names to their canonical resource type.
var resourceAliases = map[string]string{
	"cm":     "configmaps",
	"deploy": "deployments",
	"ds":     "daemonsets",
	"ep":     "endpoints",
	"ev":     "events",
	"hpa":    "horizontalpodautoscalers",
	"ing":    "ingresses",
	"no":     "nodes",
	"ns":     "namespaces",
	"po":     "pods",
	"pv":     "persistentvolumes",
	"pvc":    "persistentvolumeclaims",
	"rc":     "replicationcontrollers",
	"rs":     "replicasets",
	"sa":     "serviceaccounts",
	"sts":    "statefulsets",
	"svc":    "services",
}

// knownResourceTypes are the core resource types allowed as metric labels.
var knownResourceTypes = map[string]struct{}{
	"clusterrolebindings":      {},
	"clusterroles":             {},
	"configmaps":               {},
	"cronjobs":                 {},
	"daemonsets":               {},
	"deployments":              {},
	"endpoints":                {},
	"events":                   {},
	"horizontalpodautoscalers": {},
	"ingresses":                {},
	"jobs":                     {},
	"namespaces":               {},
	"networkpolicies":          {},
	"nodes":                    {},
	"persistentvolumeclaims":   {},
	"persistentvolumes":        {},
	"pods":                     {},
	"replicasets":              {},
	"replicationcontrollers":   {},
	"rolebindings":             {},
	"roles":                    {},
	"secrets":                  {},
	"serviceaccounts":          {},
	"services":                 {},
	"statefulsets":             {},
}

// ClassifyResourceType maps a resource type (or kubectl short name) to a
// bounded label value: the canonical core type when known, "file" for
// manifest-driven runs that name no resource type, and "other" for
// everything else, CRDs included (one series per CRD would defeat the gate).
//
// # Examples
//
//	ClassifyResourceType("pods")        // "pods"
//	ClassifyResourceType("po")          // "pods"
//	ClassifyResourceType("Deploy")      // "deployments"
//	ClassifyResourceType("myresources") // "other"
//	ClassifyResourceType("")            // "file"
func ClassifyResourceType(resourceType string) string {
	rtLower := strings.ToLower(strings.TrimSpace(resourceType))
	if rtLower == "" {
		return "file"
	}
	if canonical, ok := resourceAliases[rtLower]; ok {
		return canonical
	}
	if _, ok := knownResourceTypes[rtLower]; ok {
		return rtLower
	}
	return "other"
}

// ClassifyExitCode maps a process exit code to a bounded label value.
// kubectl uses 0 for success and mostly 1 for errors, but plugins and
// signal-terminated runs produce arbitrary codes.
func ClassifyExitCode(code int) string {
	switch {
	case code == 0:
		return "0"
	case code == 1:
		return "1"
	case code > 1 && code < 128:
		return "error"
	default:
		return "signal"
	}
}
