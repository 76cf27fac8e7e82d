package stubserver

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"soin-client/internal/models"
)

// exportUser is an account as it appears in the archive. Password
// hashes never leave the server.
type exportUser struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Email          string                `json:"email"`
	Role           models.Role           `json:"role"`
	Age            *int                  `json:"age,omitempty"`
	ApprovalStatus models.ApprovalStatus `json:"approval_status,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// exportData streams a zip of every user, submission and image.
func (s *Server) exportData(c *gin.Context) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	users := make([]exportUser, 0)
	for _, u := range s.store.UsersSnapshot() {
		users = append(users, exportUser{
			ID:             u.ID,
			Name:           u.Name,
			Email:          u.Email,
			Role:           u.Role,
			Age:            u.Age,
			ApprovalStatus: u.Approval,
			CreatedAt:      u.CreatedAt,
		})
	}

	entries := map[string]interface{}{
		"users.json":       users,
		"submissions.json": s.store.Submissions(""),
	}
	for name, payload := range entries {
		fw, err := zw.Create(name)
		if err != nil {
			abortDetail(c, http.StatusInternalServerError, "Export failed")
			return
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			abortDetail(c, http.StatusInternalServerError, "Export failed")
			return
		}
		if _, err := fw.Write(data); err != nil {
			abortDetail(c, http.StatusInternalServerError, "Export failed")
			return
		}
	}

	for name, data := range s.store.Uploads() {
		fw, err := zw.Create("images/" + name)
		if err != nil {
			abortDetail(c, http.StatusInternalServerError, "Export failed")
			return
		}
		if _, err := fw.Write(data); err != nil {
			abortDetail(c, http.StatusInternalServerError, "Export failed")
			return
		}
	}

	if err := zw.Close(); err != nil {
		abortDetail(c, http.StatusInternalServerError, "Export failed")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="soin_export.zip"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
