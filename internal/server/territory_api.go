package server

import (
	"net/http"
	"strings"

	territorytypes "github.com/lodestarhq/lodestar/modules/territory/domain/types"
	territoryservices "github.com/lodestarhq/lodestar/modules/territory/services"
	"github.com/lodestarhq/lodestar/pkg/cascade"
)

type territoryAPIRequest struct {
	TerritoryName    string                        `json:"territory_name"`
	ParentTerritory  string                        `json:"parent_territory"`
	TerritoryManager territorytypes.UserSnapshot   `json:"territory_manager"`
	Users            []territorytypes.UserSnapshot `json:"users"`
	Permissions      string                        `json:"permissions"`
	Description      string                        `json:"description"`
	AccountRules     []territorytypes.AccountRule  `json:"account_rules"`
	CriteriaOrder    string                        `json:"criteria_order"`
}

func (req territoryAPIRequest) toUpsert() territoryservices.UpsertTerritoryRequest {
	return territoryservices.UpsertTerritoryRequest{
		TerritoryName:    strings.TrimSpace(req.TerritoryName),
		ParentTerritory:  strings.TrimSpace(req.ParentTerritory),
		TerritoryManager: req.TerritoryManager,
		Users:            req.Users,
		Permissions:      req.Permissions,
		Description:      req.Description,
		AccountRules:     req.AccountRules,
		CriteriaOrder:    req.CriteriaOrder,
	}
}

type createdResponse struct {
	ID string `json:"id"`
}

type cascadeCountsResponse struct {
	Modified cascade.Counts `json:"modified"`
}

func handleTerritoryCreate(svc territoryservices.TerritoryWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req territoryAPIRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		id, err := svc.Create(r.Context(), req.toUpsert())
		if err != nil {
			writeServiceError(w, err, "TERRITORY_CREATE_FAILED")
			return
		}
		writeJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

func handleTerritoryGet(svc territoryservices.TerritoryWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		territory, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, "TERRITORY_GET_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, territory)
	}
}

func handleTerritoryUpdate(svc territoryservices.TerritoryWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req territoryAPIRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		counts, err := svc.Update(r.Context(), r.PathValue("id"), req.toUpsert())
		if err != nil {
			writeServiceError(w, err, "TERRITORY_UPDATE_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, cascadeCountsResponse{Modified: counts})
	}
}

func handleTerritoryDelete(svc territoryservices.TerritoryWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.Delete(r.Context(), territoryservices.DeleteTerritoryRequest{
			TerritoryName: r.PathValue("name"),
			TransferName:  strings.TrimSpace(r.URL.Query().Get("transfer_to")),
		})
		if err != nil {
			writeServiceError(w, err, "TERRITORY_DELETE_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, cascadeCountsResponse{Modified: counts})
	}
}

func handleTerritoryTree(svc territoryservices.TerritoryWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := svc.Tree(r.Context())
		if err != nil {
			writeServiceError(w, err, "TERRITORY_TREE_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, tree)
	}
}

func handleTerritoryList(svc territoryservices.TerritoryWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := listParamsFromRequest(r)
		names, total, err := svc.List(r.Context(), p.Search, p.Offset, p.Limit)
		if err != nil {
			writeServiceError(w, err, "TERRITORY_LIST_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, nameListResponse{Names: names, Total: total})
	}
}

func handleTerritoryParentList(svc territoryservices.TerritoryWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := listParamsFromRequest(r)
		names, total, err := svc.ParentList(r.Context(), p.Search, p.Offset, p.Limit)
		if err != nil {
			writeServiceError(w, err, "TERRITORY_PARENT_LIST_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, nameListResponse{Names: names, Total: total})
	}
}

type assignmentRunResponse struct {
	Invalid []string `json:"invalid"`
	Failed  []string `json:"failed"`
	Updated []string `json:"updated"`
	Message string   `json:"message"`
}

func handleAssignmentRun(runner *territoryservices.AssignmentRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := runner.Run(r.Context())
		if err != nil {
			writeServiceError(w, err, "ASSIGNMENT_RUN_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, assignmentRunResponse{
			Invalid: report.Invalid,
			Failed:  report.Failed,
			Updated: report.Updated,
			Message: report.Message(),
		})
	}
}
