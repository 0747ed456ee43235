// Package server holds the dependency container for the MCP kubectl
// server and the HTTP infrastructure the network transports mount
// around it.
//
// ServerContext carries everything a tool handler needs: the kubectl
// process runner, configuration, the structured logger, the version
// cache and an optional instrumentation provider. Dependencies are
// injected through functional options, so a fake runner swapped in for
// tests flows through every invocation downstream of the context.
// Handlers derive lifecycle managers from the context via
// ManagerOptions rather than constructing their own.
//
//	serverCtx, err := NewServerContext(ctx,
//	    WithKubectlPath("/usr/local/bin/kubectl"),
//	    WithDefaultNamespace("production"),
//	    WithReadOnlyMode(true),
//	)
//	if err != nil {
//	    return err
//	}
//	defer serverCtx.Shutdown()
//
//	mgr, err := kubectl.NewManager(spec, serverCtx.ManagerOptions()...)
//
// Config values are cloned on injection, so callers cannot mutate a
// running server's view of its settings.
//
// The package also provides HealthChecker, which serves the liveness,
// readiness and detailed diagnosis endpoints, and MetricsServer, a
// standalone listener that keeps the Prometheus scrape endpoint off the
// MCP port.
package server
