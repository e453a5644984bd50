package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is where the scrape endpoint is mounted. It sits outside /api so
// scrapes are neither authenticated nor counted as API traffic.
const MetricsPath = "/metrics"

const scrapeTimeout = 5 * time.Second

// MetricsHandler serves the default registry, including the gradebook
// collectors, in text or OpenMetrics format.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Timeout:           scrapeTimeout,
	}))
}

// Mount registers the scrape endpoint on the application root.
func Mount(app *fiber.App) {
	app.Get(MetricsPath, MetricsHandler())
}
