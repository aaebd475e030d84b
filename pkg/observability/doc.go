/*
Package observability turns harness and recorder lifecycle hooks into
Prometheus metrics and structured log lines.

Hooks from several sources are merged with Combine, so a host can log and
record metrics for the same events:

	metrics := observability.NewMetrics()
	hooks := observability.Combine(observability.LogHooks(logger), metrics.Hooks())
*/
package observability
