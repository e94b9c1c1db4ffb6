package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lodestarhq/lodestar/internal/metrics"
	catalogpersistence "github.com/lodestarhq/lodestar/modules/catalog/infrastructure/persistence"
	catalogservices "github.com/lodestarhq/lodestar/modules/catalog/services"
	directorypersistence "github.com/lodestarhq/lodestar/modules/directory/infrastructure/persistence"
	directoryservices "github.com/lodestarhq/lodestar/modules/directory/services"
	rolepersistence "github.com/lodestarhq/lodestar/modules/role/infrastructure/persistence"
	roleservices "github.com/lodestarhq/lodestar/modules/role/services"
	territorypersistence "github.com/lodestarhq/lodestar/modules/territory/infrastructure/persistence"
	territoryservices "github.com/lodestarhq/lodestar/modules/territory/services"
	"github.com/lodestarhq/lodestar/pkg/cascade"
)

// accountsModule is the record module the assignment runner evaluates rules
// against.
const accountsModule = "Account"

// HandlerOptions lets tests inject services; any nil service is built on a
// shared pgx pool from the environment DSN.
type HandlerOptions struct {
	Logger *logrus.Logger

	TerritoryService  territoryservices.TerritoryWriteService
	AssignmentRunner  *territoryservices.AssignmentRunner
	RoleService       roleservices.RoleWriteService
	VisibilityService *roleservices.RoleVisibilityService
	GroupService      directoryservices.GroupWriteService
	SharingService    directoryservices.SharingRuleService
	UserService       directoryservices.UserWriteService
	Catalog           catalogservices.Catalog
}

func NewHandler() (http.Handler, error) {
	return NewHandlerWithOptions(HandlerOptions{})
}

func NewHandlerWithOptions(opts HandlerOptions) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	territoryService := opts.TerritoryService
	assignmentRunner := opts.AssignmentRunner
	roleService := opts.RoleService
	visibilityService := opts.VisibilityService
	groupService := opts.GroupService
	sharingService := opts.SharingService
	userService := opts.UserService
	catalog := opts.Catalog

	needsPool := territoryService == nil || assignmentRunner == nil ||
		roleService == nil || visibilityService == nil || groupService == nil ||
		sharingService == nil || userService == nil || catalog == nil

	if needsPool {
		pool, err := pgxpool.New(context.Background(), dbDSNFromEnv())
		if err != nil {
			return nil, err
		}
		runner := cascade.NewRunner(pool)
		m := metrics.New()

		if catalog == nil {
			catalog = catalogservices.NewCatalog(catalogpersistence.NewCatalogPGStore(pool))
		}

		territoryStore := territorypersistence.NewTerritoryPGStore(pool)
		if territoryService == nil {
			territoryService = territoryservices.NewTerritoryWriteService(
				territoryStore,
				territorypersistence.NewTerritoryCascadePlanner(),
				runner,
			)
		}
		if assignmentRunner == nil {
			translator := territoryservices.NewRuleTranslator(catalog, accountsModule)
			evaluator := territoryservices.NewCriteriaEvaluator(
				translator,
				territorypersistence.NewRecordPGStore(pool),
				accountsModule,
			)
			assignmentRunner = territoryservices.NewAssignmentRunner(territoryStore, evaluator, logger, m)
		}

		roleStore := rolepersistence.NewRolePGStore(pool)
		if roleService == nil {
			roleService = roleservices.NewRoleWriteService(
				roleStore,
				rolepersistence.NewRoleCascadePlanner(),
				runner,
			)
		}
		if visibilityService == nil {
			visibilityService = roleservices.NewRoleVisibilityService(
				roleStore,
				rolepersistence.NewUserDirectoryPGStore(pool),
			)
		}

		if groupService == nil {
			groupService = directoryservices.NewGroupWriteService(
				directorypersistence.NewGroupPGStore(pool),
				directorypersistence.NewGroupCascadePlanner(),
				runner,
			)
		}
		if sharingService == nil {
			sharingService = directoryservices.NewSharingRuleService(directorypersistence.NewSharingRulePGStore(pool))
		}
		if userService == nil {
			userService = directoryservices.NewUserWriteService(directorypersistence.NewUserPGStore(pool))
		}

		ctx := context.Background()
		if err := roleService.EnsureBootstrapRoles(ctx); err != nil {
			return nil, err
		}
		if err := territoryService.EnsureRoot(ctx, getenvDefault("ROOT_TERRITORY_NAME", "Lodestar")); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /api/territories", handleTerritoryCreate(territoryService))
	mux.Handle("GET /api/territories", handleTerritoryList(territoryService))
	mux.Handle("GET /api/territories/parents", handleTerritoryParentList(territoryService))
	mux.Handle("GET /api/territories/tree", handleTerritoryTree(territoryService))
	mux.Handle("GET /api/territories/{id}", handleTerritoryGet(territoryService))
	mux.Handle("PUT /api/territories/{id}", handleTerritoryUpdate(territoryService))
	mux.Handle("DELETE /api/territories/{name}", handleTerritoryDelete(territoryService))
	mux.Handle("POST /api/territories/assignment-runs", handleAssignmentRun(assignmentRunner))

	mux.Handle("POST /api/roles", handleRoleCreate(roleService))
	mux.Handle("GET /api/roles", handleRoleList(roleService))
	mux.Handle("GET /api/roles/parents", handleRoleParentList(roleService))
	mux.Handle("GET /api/roles/tree", handleRoleTree(roleService))
	mux.Handle("GET /api/roles/visible-users", handleRoleVisibleUsers(visibilityService))
	mux.Handle("GET /api/roles/{id}", handleRoleGet(roleService))
	mux.Handle("PUT /api/roles/{id}", handleRoleUpdate(roleService))
	mux.Handle("DELETE /api/roles/{name}", handleRoleDelete(roleService))

	mux.Handle("POST /api/groups", handleGroupCreate(groupService))
	mux.Handle("GET /api/groups", handleGroupList(groupService))
	mux.Handle("GET /api/groups/{id}", handleGroupGet(groupService))
	mux.Handle("PUT /api/groups/{id}", handleGroupUpdate(groupService))
	mux.Handle("DELETE /api/groups/{id}", handleGroupDelete(groupService))

	mux.Handle("POST /api/sharing-rules", handleSharingRuleCreate(sharingService))
	mux.Handle("GET /api/sharing-rules", handleSharingRuleList(sharingService))
	mux.Handle("GET /api/sharing-rules/{id}", handleSharingRuleGet(sharingService))
	mux.Handle("PUT /api/sharing-rules/{id}", handleSharingRuleUpdate(sharingService))
	mux.Handle("DELETE /api/sharing-rules/{id}", handleSharingRuleDelete(sharingService))

	mux.Handle("POST /api/users", handleUserCreate(userService))
	mux.Handle("GET /api/users", handleUserList(userService))
	mux.Handle("GET /api/users/{id}", handleUserGet(userService))

	mux.Handle("POST /api/catalog/reload", handleCatalogReload(catalog))

	a, err := loadAuthorizer()
	if err != nil {
		return nil, err
	}
	return withAuthz(a, mux), nil
}
