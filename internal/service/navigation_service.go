package service

import "github.com/noah-isme/discipulus-api/internal/models"

var (
	routeHome      = models.Route{Path: "/", Name: "home", Label: "Início"}
	routeCatalog   = models.Route{Path: "/catalog", Name: "catalog", Label: "Encontrar Professores"}
	routeLogin     = models.Route{Path: "/login", Name: "login", Label: "Entrar"}
	routeRegister  = models.Route{Path: "/register", Name: "register", Label: "Cadastrar"}
	routeSchedule  = models.Route{Path: "/schedule", Name: "schedule", Label: "Minhas Aulas"}
	routeDashboard = models.Route{Path: "/teacher-dashboard", Name: "dashboard", Label: "Painel Professor"}
)

// NavigationService lists the client routes a principal may visit.
type NavigationService struct{}

// NewNavigationService constructs a NavigationService.
func NewNavigationService() *NavigationService {
	return &NavigationService{}
}

// Routes returns the visible routes. A nil principal is anonymous; signed-in
// users no longer see the login and register entries.
func (s *NavigationService) Routes(principal *models.JWTClaims) []models.Route {
	if principal == nil {
		return []models.Route{routeHome, routeCatalog, routeLogin, routeRegister}
	}
	routes := []models.Route{routeHome, routeCatalog, routeSchedule}
	if principal.Role == models.RoleTeacher {
		routes = append(routes, routeDashboard)
	}
	return routes
}
