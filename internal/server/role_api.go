package server

import (
	"net/http"
	"strings"

	roleservices "github.com/lodestarhq/lodestar/modules/role/services"
)

type roleAPIRequest struct {
	RoleName           string `json:"role_name"`
	ReportsTo          string `json:"reports_to"`
	ShareDataWithPeers bool   `json:"share_data_with_peers"`
	Description        string `json:"description"`
}

func (req roleAPIRequest) toUpsert() roleservices.UpsertRoleRequest {
	return roleservices.UpsertRoleRequest{
		RoleName:           strings.TrimSpace(req.RoleName),
		ReportsTo:          strings.TrimSpace(req.ReportsTo),
		ShareDataWithPeers: req.ShareDataWithPeers,
		Description:        req.Description,
	}
}

func handleRoleCreate(svc roleservices.RoleWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleAPIRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		id, err := svc.Create(r.Context(), req.toUpsert())
		if err != nil {
			writeServiceError(w, err, "ROLE_CREATE_FAILED")
			return
		}
		writeJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

func handleRoleGet(svc roleservices.RoleWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, "ROLE_GET_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, role)
	}
}

func handleRoleUpdate(svc roleservices.RoleWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleAPIRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		counts, err := svc.Update(r.Context(), r.PathValue("id"), req.toUpsert())
		if err != nil {
			writeServiceError(w, err, "ROLE_UPDATE_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, cascadeCountsResponse{Modified: counts})
	}
}

func handleRoleDelete(svc roleservices.RoleWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.Delete(r.Context(), roleservices.DeleteRoleRequest{
			RoleName:     r.PathValue("name"),
			TransferName: strings.TrimSpace(r.URL.Query().Get("transfer_to")),
		})
		if err != nil {
			writeServiceError(w, err, "ROLE_DELETE_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, cascadeCountsResponse{Modified: counts})
	}
}

func handleRoleTree(svc roleservices.RoleWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := svc.Tree(r.Context())
		if err != nil {
			writeServiceError(w, err, "ROLE_TREE_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, tree)
	}
}

func handleRoleList(svc roleservices.RoleWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := listParamsFromRequest(r)
		names, total, err := svc.List(r.Context(), p.Search, p.Offset, p.Limit)
		if err != nil {
			writeServiceError(w, err, "ROLE_LIST_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, nameListResponse{Names: names, Total: total})
	}
}

func handleRoleParentList(svc roleservices.RoleWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := listParamsFromRequest(r)
		names, total, err := svc.ParentList(r.Context(), p.Search, p.Offset, p.Limit)
		if err != nil {
			writeServiceError(w, err, "ROLE_PARENT_LIST_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, nameListResponse{Names: names, Total: total})
	}
}

type visibleUsersResponse struct {
	UserIDs []string `json:"user_ids"`
}

func handleRoleVisibleUsers(svc *roleservices.RoleVisibilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		roleName := strings.TrimSpace(q.Get("role_name"))
		userID := strings.TrimSpace(q.Get("user_id"))
		if roleName == "" || userID == "" {
			writeError(w, http.StatusBadRequest, "VISIBLE_USERS_PARAMS_REQUIRED", "role_name and user_id required")
			return
		}

		ids, err := svc.VisibleUserIDs(r.Context(), roleName, userID)
		if err != nil {
			writeServiceError(w, err, "VISIBLE_USERS_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, visibleUsersResponse{UserIDs: ids})
	}
}
