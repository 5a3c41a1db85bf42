package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/kinship/internal/api"
	"github.com/persistorai/kinship/internal/models"
)

func setupLinkRouter(svc *mockLinkService) *gin.Engine {
	h := api.NewLinkHandler(svc, testLogger())
	r := newTestRouter()
	r.POST("/people/:id/parents", h.AddParent)
	r.DELETE("/people/:id/parents/:parent", h.RemoveParent)
	r.POST("/people/:id/partners", h.AddPartner)
	r.DELETE("/people/:id/partners/:partner", h.RemovePartner)

	return r
}

func TestLinkHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		err        error
		wantOp     string
		wantStatus int
	}{
		{name: "add parent", method: http.MethodPost, path: "/people/ada/parents", body: `{"parent_id":"mum"}`, wantOp: "AddParent ada mum", wantStatus: http.StatusCreated},
		{name: "add parent missing id", method: http.MethodPost, path: "/people/ada/parents", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "add parent cycle", method: http.MethodPost, path: "/people/mum/parents", body: `{"parent_id":"ada"}`, err: models.ErrCyclicAncestry, wantOp: "AddParent mum ada", wantStatus: http.StatusConflict},
		{name: "add parent self", method: http.MethodPost, path: "/people/ada/parents", body: `{"parent_id":"ada"}`, err: models.ErrSelfLink, wantOp: "AddParent ada ada", wantStatus: http.StatusBadRequest},
		{name: "add parent unknown", method: http.MethodPost, path: "/people/ada/parents", body: `{"parent_id":"ghost"}`, err: models.ErrPersonNotFound, wantOp: "AddParent ada ghost", wantStatus: http.StatusNotFound},
		{name: "add parent duplicate", method: http.MethodPost, path: "/people/ada/parents", body: `{"parent_id":"mum"}`, err: models.ErrDuplicateKey, wantOp: "AddParent ada mum", wantStatus: http.StatusConflict},
		{name: "remove parent", method: http.MethodDelete, path: "/people/ada/parents/mum", wantOp: "RemoveParent ada mum", wantStatus: http.StatusOK},
		{name: "remove missing parent", method: http.MethodDelete, path: "/people/ada/parents/bob", err: models.ErrLinkNotFound, wantOp: "RemoveParent ada bob", wantStatus: http.StatusNotFound},
		{name: "add partner", method: http.MethodPost, path: "/people/mum/partners", body: `{"partner_id":"dad"}`, wantOp: "AddPartner mum dad", wantStatus: http.StatusCreated},
		{name: "add partner missing id", method: http.MethodPost, path: "/people/mum/partners", body: `{"parent_id":"dad"}`, wantStatus: http.StatusBadRequest},
		{name: "remove partner", method: http.MethodDelete, path: "/people/mum/partners/dad", wantOp: "RemovePartner mum dad", wantStatus: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotOp string
			svc := &mockLinkService{
				linkFn: func(op, personID, otherID string) (*models.Person, error) {
					gotOp = fmt.Sprintf("%s %s %s", op, personID, otherID)
					if tc.err != nil {
						return nil, tc.err
					}
					return &models.Person{ID: personID}, nil
				},
			}

			w := doRequest(setupLinkRouter(svc), tc.method, tc.path, tc.body)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if gotOp != tc.wantOp {
				t.Errorf("service call = %q, want %q", gotOp, tc.wantOp)
			}
		})
	}
}
