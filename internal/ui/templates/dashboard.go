package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard is the analytics landing page. Regions are patched over SSE by
// the datastar runtime; the page itself carries no data.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sales Insights</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #1d2330; }
header { background: #1d2330; color: #fff; padding: 1rem 2rem; display: flex; justify-content: space-between; align-items: center; }
header h1 { font-size: 1.2rem; margin: 0; }
main { padding: 1.5rem 2rem; display: grid; gap: 1.5rem; }
section { background: #fff; border-radius: 8px; padding: 1rem 1.25rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
section h2 { font-size: 1rem; margin: 0 0 .75rem; }
button { background: #2456d6; color: #fff; border: 0; border-radius: 6px; padding: .4rem .9rem; cursor: pointer; }
button:hover { background: #1b42a8; }
.modern-table { width: 100%; border-collapse: collapse; font-size: .9rem; }
.modern-table th, .modern-table td { text-align: left; padding: .45rem .6rem; border-bottom: 1px solid #e4e7ee; }
.modern-table th { color: #5a6272; font-weight: 600; }
.category-badge { background: #eef2ff; color: #2456d6; border-radius: 4px; padding: .1rem .45rem; font-size: .8rem; }
</style>
</head>
<body data-signals="{trendsData: [], productsData: [], segmentsData: [], forecastData: {}}" data-on-load="@get('/sse/refresh-all')">
<header>
<h1>Sales Insights</h1>
<button data-on-click="@get('/sse/refresh-all')">Refresh all</button>
</header>
<main>
<section>
<h2>Revenue by category</h2>
<div id="categories-content">Loading categories...</div>
<button data-on-click="@get('/sse/categories')">Refresh</button>
</section>
<section>
<h2>Monthly trends</h2>
<div id="trends-content">Loading trends...</div>
<pre data-text="JSON.stringify($trendsData, null, 2)"></pre>
<button data-on-click="@get('/sse/monthly-trends')">Refresh</button>
</section>
<section>
<h2>Top products</h2>
<div id="products-content">Loading products...</div>
<pre data-text="JSON.stringify($productsData, null, 2)"></pre>
<button data-on-click="@get('/sse/top-products')">Refresh</button>
</section>
</main>
</body>
</html>`
