package project

// frameworkRule maps a dependency to a framework label. Rules are tried in
// order and the first match wins, so meta-frameworks precede their base library.
type frameworkRule struct {
	dependency string
	label      string
	web        bool
}

var frameworkRules = []frameworkRule{
	{"next", "Next.js", true},
	{"nuxt", "Nuxt", true},
	{"@remix-run/react", "Remix", true},
	{"gatsby", "Gatsby", true},
	{"@angular/core", "Angular", true},
	{"@sveltejs/kit", "SvelteKit", true},
	{"astro", "Astro", true},
	{"svelte", "Svelte", true},
	{"solid-js", "Solid", true},
	{"vue", "Vue", true},
	{"react-native", "React Native", false},
	{"react", "React", true},
	{"@nestjs/core", "NestJS", false},
	{"express", "Express", false},
	{"fastify", "Fastify", false},
	{"hono", "Hono", false},
	{"django", "Django", false},
	{"flask", "Flask", false},
	{"fastapi", "FastAPI", false},
	{"github.com/gin-gonic/gin", "Gin", false},
	{"github.com/labstack/echo", "Echo", false},
	{"github.com/gofiber/fiber", "Fiber", false},
	{"github.com/go-chi/chi", "Chi", false},
	{"actix-web", "Actix Web", false},
	{"axum", "Axum", false},
	{"rocket", "Rocket", false},
	{"rails", "Rails", false},
	{"laravel/framework", "Laravel", false},
}

// DetectFramework returns the label of the first matching rule, or "".
func DetectFramework(m *Manifest) string {
	for _, r := range frameworkRules {
		if m.HasPrefix(r.dependency) {
			return r.label
		}
	}
	return ""
}

// IsWebFramework reports whether label names a browser-rendered UI framework.
func IsWebFramework(label string) bool {
	for _, r := range frameworkRules {
		if r.label == label {
			return r.web
		}
	}
	return false
}
