package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/moaboard/moaboard/config"
	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

// AuthController handles registration, login, profile and account removal,
// including third-party sign-in providers.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Nickname string `json:"nickname" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	nickname := utils.SanitizePlain(req.Nickname)
	if !validNickname(nickname) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "nickname must be 2-20 characters without markup")
		return
	}
	if len(req.Password) < utils.MinPasswordLength {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password must be at least 6 characters")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Uniqueness is a query-then-write check on both fields; the race window
	// under concurrent registration is accepted.
	if taken, err := a.nicknameTaken(nickname, 0); err != nil {
		utils.Internal(ctx, 50001, err, "failed to check nickname")
		return
	} else if taken {
		utils.Error(ctx, http.StatusConflict, 40901, "nickname already in use")
		return
	}
	if _, err := a.lookupByEmail(email); err == nil {
		utils.Error(ctx, http.StatusConflict, 40902, "email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		// not-found is the success path here
		utils.Internal(ctx, 50002, err, "failed to check email")
		return
	}

	ip := ctx.ClientIP()
	if utils.RegistrationIsBanned(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42920, "registration temporarily blocked for this address")
		return
	}
	if !utils.RegistrationCooldownTry(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "too many attempts, slow down")
		return
	}
	if !utils.RegistrationDailyLimitCheck(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42921, "daily registration limit reached")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Internal(ctx, 50003, err, "failed to hash password")
		return
	}

	user := models.User{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: hash,
		RegisterIP:   ip,
	}

	if err := a.db.Create(&user).Error; err != nil {
		utils.Internal(ctx, 50004, err, "failed to create user")
		fails := utils.RegistrationFailRecord(ip)
		if fails >= maxInt(config.Get().RegisterFailedMaxPerIPPerHour, 1) {
			utils.RegistrationBan(ip)
		}
		return
	}

	utils.RegistrationDailyIncrement(ip)

	token, err := utils.GenerateToken(user.ID, user.Nickname, user.IsAdmin, utils.TokenLifetime)
	if err != nil {
		utils.Internal(ctx, 50005, err, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  sanitizeUserResponse(user),
	})
}

// Login authenticates by email and password and issues a bearer token.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	user, err := a.lookupByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid email or password")
			return
		}
		utils.Internal(ctx, 50011, err, "failed to load user")
		return
	}

	if user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "invalid email or password")
		return
	}

	now := time.Now()
	_ = a.db.Model(user).Update("last_login_at", &now).Error

	token, err := utils.GenerateToken(user.ID, user.Nickname, user.IsAdmin, utils.TokenLifetime)
	if err != nil {
		utils.Internal(ctx, 50012, err, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  sanitizeUserResponse(*user),
	})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "missing bearer token")
		return
	}
	token := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40131, "invalid token")
		return
	}

	expiresAt := time.Now().Add(utils.TokenLifetime)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)

	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the caller's own account with engagement references.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40140, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Internal(ctx, 50013, err, "failed to load user")
		return
	}

	var likedPostIDs, bookmarkedPostIDs []uint
	_ = a.db.Model(&models.PostLike{}).Where("user_id = ?", userID).Pluck("post_id", &likedPostIDs).Error
	_ = a.db.Model(&models.Bookmark{}).Where("user_id = ?", userID).Pluck("post_id", &bookmarkedPostIDs).Error

	var unread int64
	_ = a.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&unread).Error

	utils.Success(ctx, gin.H{
		"user":             sanitizeUserResponse(user),
		"liked_posts":      likedPostIDs,
		"bookmarked_posts": bookmarkedPostIDs,
		"unread_count":     unread,
	})
}

// UpdateProfile changes the caller's nickname. The denormalized copies on
// posts and comments are rewritten in the same transaction, which is the
// single follow-up-write step that keeps the drift auditable.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	type request struct {
		Nickname string `json:"nickname" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40141, "unauthorized")
		return
	}

	nickname := utils.SanitizePlain(req.Nickname)
	if !validNickname(nickname) {
		utils.Error(ctx, http.StatusBadRequest, 40021, "nickname must be 2-20 characters without markup")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Internal(ctx, 50014, err, "failed to load user")
		return
	}
	if user.Nickname == nickname {
		utils.Success(ctx, gin.H{"user": sanitizeUserResponse(user)})
		return
	}

	if taken, err := a.nicknameTaken(nickname, userID); err != nil {
		utils.Internal(ctx, 50015, err, "failed to check nickname")
		return
	} else if taken {
		utils.Error(ctx, http.StatusConflict, 40903, "nickname already in use")
		return
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("nickname", nickname).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("author_id = ?", userID).Update("author_nickname", nickname).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("author_id = ?", userID).Update("author_nickname", nickname).Error
	})
	if err != nil {
		utils.Internal(ctx, 50016, err, "failed to update profile")
		return
	}

	user.Nickname = nickname
	utils.Success(ctx, gin.H{"user": sanitizeUserResponse(user)})
}

// DeleteOwnAccount removes the caller's account. Reasons are optional; a
// withdrawal record is written only when at least one reason was given.
func (a *AuthController) DeleteOwnAccount(ctx *gin.Context) {
	type request struct {
		Reasons []string `json:"reasons"`
	}

	var req request
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
			return
		}
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40142, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Internal(ctx, 50017, err, "failed to load user")
		return
	}

	reasons := make([]string, 0, len(req.Reasons))
	for _, r := range req.Reasons {
		if s := utils.SanitizePlain(r); s != "" {
			reasons = append(reasons, s)
		}
	}

	if err := deleteUserCascade(a.db, &user, reasons); err != nil {
		utils.Internal(ctx, 50018, err, "failed to delete account")
		return
	}

	// The rows are gone; token revocation afterwards is best-effort.
	if err := utils.RevokeUserSessions(user.ID); err != nil {
		utils.Sugar.Warnf("session revocation after self-deletion failed for user %d: %v", user.ID, err)
	}

	utils.MetricAccountDeleted("self")
	utils.Sugar.Infof("user %d (%s) deleted own account", user.ID, user.Nickname)
	utils.Success(ctx, gin.H{"message": "account deleted"})
}

// OAuthRedirect starts the provider flow with a single-use state token.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	conf, err := a.oauthConfig(ctx.Param("provider"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "unsupported provider")
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)
	ctx.Redirect(http.StatusFound, conf.AuthCodeURL(state))
}

// OAuthCallback finishes the provider flow and signs the user in, creating
// an account on first sight.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	provider := ctx.Param("provider")
	conf, err := a.oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "unsupported provider")
		return
	}

	if !utils.ConsumeState(ctx.Query("state")) {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid oauth state")
		return
	}

	code := ctx.Query("code")
	if code == "" {
		utils.Error(ctx, http.StatusBadRequest, 40043, "missing authorization code")
		return
	}

	oauthCtx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	token, err := conf.Exchange(oauthCtx, code)
	if err != nil {
		utils.Internal(ctx, 50040, err, "oauth exchange failed")
		return
	}

	data, err := fetchOAuthUser(provider, token)
	if err != nil {
		utils.Internal(ctx, 50041, err, "failed to fetch oauth profile")
		return
	}

	user, err := a.findOrCreateOAuthUser(provider, data, ctx.ClientIP())
	if err != nil {
		utils.Internal(ctx, 50042, err, "failed to sign in oauth user")
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Nickname, user.IsAdmin, utils.TokenLifetime)
	if err != nil {
		utils.Internal(ctx, 50043, err, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": jwtToken,
		"user":  sanitizeUserResponse(*user),
	})
}

func (a *AuthController) oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	redirect := strings.TrimRight(cfg.OAuthRedirectBase, "/") + "/api/v1/auth/oauth/" + provider + "/callback"

	switch provider {
	case "github":
		if cfg.GitHubClientID == "" {
			return nil, errors.New("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  redirect,
			Scopes:       []string{"read:user", "user:email"},
		}, nil
	case "google":
		if cfg.GoogleClientID == "" {
			return nil, errors.New("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirect,
			Scopes:       []string{"openid", "email", "profile"},
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

type oauthUser struct {
	ID       string
	Email    string
	Nickname string
}

func fetchOAuthUser(provider string, token *oauth2.Token) (*oauthUser, error) {
	var endpoint string
	switch provider {
	case "github":
		endpoint = "https://api.github.com/user"
	case "google":
		endpoint = "https://www.googleapis.com/oauth2/v2/userinfo"
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	switch provider {
	case "github":
		var payload struct {
			ID    int64  `json:"id"`
			Login string `json:"login"`
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		nickname := payload.Name
		if nickname == "" {
			nickname = payload.Login
		}
		return &oauthUser{ID: strconv.FormatInt(payload.ID, 10), Email: payload.Email, Nickname: nickname}, nil
	default:
		var payload struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		return &oauthUser{ID: payload.ID, Email: payload.Email, Nickname: payload.Name}, nil
	}
}

func (a *AuthController) findOrCreateOAuthUser(provider string, data *oauthUser, ip string) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", provider, data.ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Attach to an existing local account with the same email when possible.
	if data.Email != "" {
		if existing, err := a.lookupByEmail(strings.ToLower(data.Email)); err == nil {
			existing.Provider = provider
			existing.ProviderID = data.ID
			if err := a.db.Save(existing).Error; err != nil {
				return nil, err
			}
			return existing, nil
		}
	}

	user = models.User{
		Email:      strings.ToLower(data.Email),
		Nickname:   a.ensureUniqueNickname(utils.SanitizePlain(data.Nickname), provider, data.ID),
		Provider:   provider,
		ProviderID: data.ID,
		RegisterIP: ip,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ensureUniqueNickname derives a free nickname from the provider profile,
// appending a short discriminator when the base form is taken.
func (a *AuthController) ensureUniqueNickname(base, provider, id string) string {
	if !validNickname(base) {
		base = provider + "_" + id
		if len([]rune(base)) > 20 {
			base = string([]rune(base)[:20])
		}
	}

	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := a.nicknameTaken(candidate, 0)
		if err != nil || !taken {
			return candidate
		}
		suffix := "_" + uuid.NewString()[:4]
		runes := []rune(base)
		if len(runes)+len(suffix) > 20 {
			runes = runes[:20-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
	return candidate
}

// nicknameTaken runs the exact-match uniqueness lookup, optionally excluding
// one user (for renames).
func (a *AuthController) nicknameTaken(nickname string, excludeID uint) (bool, error) {
	query := a.db.Model(&models.User{}).Where("nickname = ?", nickname)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// lookupByEmail returns the user registered with the email or
// gorm.ErrRecordNotFound.
func (a *AuthController) lookupByEmail(email string) (*models.User, error) {
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// validNickname accepts 2-20 visible characters after sanitation.
func validNickname(s string) bool {
	l := len([]rune(s))
	return l >= 2 && l <= 20
}

func sanitizeUserResponse(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"nickname":   user.Nickname,
		"is_admin":   user.IsAdmin,
		"provider":   user.Provider,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
