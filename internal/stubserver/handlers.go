package stubserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"soin-client/internal/models"
	"soin-client/pkg/utils"
)

// Development seed so an admin exists out of the box.
const (
	SeedAdminEmail    = "admin@soin.local"
	SeedAdminPassword = "admin123"
)

const tokenTTL = 24 * time.Hour

// Server is the stub API. One instance per process; state in Store.
type Server struct {
	store  *Store
	secret string
}

// New builds a stub server with a seeded admin account.
func New(secret string) *Server {
	s := &Server{store: NewStore(), secret: secret}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("stubserver: seed admin: %v", err))
	}
	_ = s.store.AddUser(&User{
		ID:           uuid.NewString(),
		Name:         "SOIN Admin",
		Email:        SeedAdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	return s
}

// Store exposes the backing store for test seeding.
func (s *Server) Store() *Store {
	return s.store
}

type registerInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Age      *int   `json:"age"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid registration payload")
		return
	}

	role := models.Role(input.Role)
	// Admin accounts are seeded, never self-registered.
	if role != models.RolePatient && role != models.RoleDoctor {
		abortDetail(c, http.StatusBadRequest, "Role must be patient or doctor")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "Could not process password")
		return
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		Age:          input.Age,
		CreatedAt:    time.Now().UTC(),
	}
	if role == models.RoleDoctor {
		user.Approval = models.ApprovalPending
	}

	if err := s.store.AddUser(user); err != nil {
		abortDetail(c, http.StatusBadRequest, "Email already registered")
		return
	}

	s.respondWithToken(c, user)
}

func (s *Server) login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortDetail(c, http.StatusBadRequest, "Invalid login payload")
		return
	}

	user, ok := s.store.UserByEmail(input.Email)
	if !ok {
		abortDetail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		abortDetail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	// A pending doctor can log in; the client keeps them off the doctor
	// dashboard until approval.
	s.respondWithToken(c, user)
}

func (s *Server) respondWithToken(c *gin.Context, user *User) {
	token, err := utils.GenerateToken(user.ID, string(user.Role), s.secret, tokenTTL)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user":         user.Identity(),
	})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).Identity())
}

func (s *Server) listSubmissions(c *gin.Context) {
	user := currentUser(c)
	switch user.Role {
	case models.RolePatient:
		c.JSON(http.StatusOK, s.store.Submissions(user.ID))
	case models.RoleAdmin:
		c.JSON(http.StatusOK, s.store.Submissions(""))
	case models.RoleDoctor:
		if user.Approval != models.ApprovalApproved {
			abortDetail(c, http.StatusForbidden, "Doctor account pending approval")
			return
		}
		c.JSON(http.StatusOK, s.store.Submissions(""))
	default:
		abortDetail(c, http.StatusForbidden, "Access denied")
	}
}

func (s *Server) createSubmission(c *gin.Context) {
	user := currentUser(c)
	if user.Role != models.RolePatient {
		abortDetail(c, http.StatusForbidden, "Only patients submit records")
		return
	}

	fileHeader, err := c.FormFile("tongue_image")
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "tongue_image is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "Could not read tongue_image")
		return
	}
	defer file.Close()
	imageData, err := io.ReadAll(file)
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "Could not read tongue_image")
		return
	}

	diabetesType := models.DiabetesType(c.PostForm("diabetes_type"))
	if !diabetesType.Valid() {
		abortDetail(c, http.StatusBadRequest, "diabetes_type must be Type 1, Type 2 or Prediabetes")
		return
	}

	symptoms, err := decodeStringList(c.PostForm("symptoms"))
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "symptoms must be a JSON array of strings")
		return
	}
	medications, err := decodeStringList(c.PostForm("medications"))
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "medications must be a JSON array of strings")
		return
	}

	imageName := uuid.NewString() + path.Ext(fileHeader.Filename)
	s.store.SaveUpload(imageName, imageData)

	age := 0
	if user.Age != nil {
		age = *user.Age
	}
	sub := models.Submission{
		ID:             uuid.NewString(),
		PatientID:      user.ID,
		PatientName:    user.Name,
		PatientEmail:   user.Email,
		PatientAge:     age,
		TongueImageURL: "/uploads/tongue_images/" + imageName,
		BloodGlucose:   utils.StringToFloat(c.PostForm("blood_glucose")),
		HbA1c:          utils.StringToFloat(c.PostForm("hba1c")),
		InsulinLevel:   utils.ParseFloatPtr(c.PostForm("insulin_level")),
		DiabetesType:   diabetesType,
		Symptoms:       symptoms,
		Medications:    medications,
		Notes:          c.PostForm("notes"),
		CreatedAt:      time.Now().UTC(),
	}
	s.store.AddSubmission(sub)

	c.JSON(http.StatusOK, sub)
}

func decodeStringList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Server) serveUpload(c *gin.Context) {
	data, ok := s.store.Upload(c.Param("name"))
	if !ok {
		abortDetail(c, http.StatusNotFound, "Image not found")
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (s *Server) adminStats(c *gin.Context) {
	patients, doctors, pending, submissions := s.store.Stats()
	c.JSON(http.StatusOK, gin.H{
		"total_patients":    patients,
		"total_doctors":     doctors,
		"pending_doctors":   pending,
		"total_submissions": submissions,
	})
}

func (s *Server) pendingDoctors(c *gin.Context) {
	pending := s.store.PendingDoctors()
	out := make([]models.Identity, 0, len(pending))
	for _, u := range pending {
		out = append(out, u.Identity())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) approveDoctor(c *gin.Context) {
	approve, err := strconv.ParseBool(c.DefaultQuery("approve", "true"))
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "approve must be true or false")
		return
	}

	status := models.ApprovalApproved
	if !approve {
		status = models.ApprovalRejected
	}
	if !s.store.SetApproval(c.Param("id"), status) {
		abortDetail(c, http.StatusNotFound, "Doctor not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(status)})
}
