/*
Package observability turns engine lifecycle hooks into Prometheus metrics.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	session, _ := dsg.New(h, dsg.WithLifecycleHooks(metrics.Hooks()))
	http.Handle("/metrics", promhttp.Handler())
*/
package observability
