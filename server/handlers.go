package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"

	"inkwell/apperr"
	"inkwell/blog"
	"inkwell/filestore"
	"inkwell/model"
	"inkwell/server/middlewares"
)

// API binds the content service and media store to gin handlers. Handlers do
// request/response mapping only; every decision lives in the service layer.
type API struct {
	svc   *blog.Service
	files filestore.FileStore
}

func NewAPI(svc *blog.Service, files filestore.FileStore) *API {
	return &API{svc: svc, files: files}
}

// ---- auth ----

type registerRequest struct {
	Username  string     `json:"username" binding:"required"`
	Email     string     `json:"email" binding:"required"`
	Password  string     `json:"password" binding:"required"`
	Password2 string     `json:"password2" binding:"required"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      model.Role `json:"role"`
}

func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	var in blog.RegisterInput
	copier.Copy(&in, &req)
	result, err := a.svc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := a.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (a *API) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	pair, err := a.svc.Tokens().Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

type logoutRequest struct {
	Refresh string `json:"refresh_token" binding:"required"`
}

func (a *API) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := a.svc.Tokens().Revoke(c.Request.Context(), req.Refresh); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (a *API) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	actor := middlewares.ActorFrom(c)
	if err := a.svc.ChangePassword(c.Request.Context(), actor, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// ---- profile ----

func (a *API) GetProfile(c *gin.Context) {
	view, err := a.svc.GetProfile(c.Request.Context(), middlewares.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Avatar    *string `json:"avatar"`
	Website   *string `json:"website"`
	Location  *string `json:"location"`

	// Read-only fields; any attempt to write them is rejected outright
	// rather than silently dropped.
	Role          *string `json:"role"`
	TotalPosts    *int64  `json:"total_posts"`
	TotalViews    *int64  `json:"total_views"`
	TotalComments *int64  `json:"total_comments"`
}

func (a *API) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	v := apperr.NewValidation()
	if req.Role != nil {
		v.Add("role", "This field is read-only")
	}
	if req.TotalPosts != nil || req.TotalViews != nil || req.TotalComments != nil {
		v.Add("totals", "Aggregate counters are read-only")
	}
	if !v.Empty() {
		respondError(c, v)
		return
	}
	var in blog.ProfileInput
	copier.Copy(&in, &req)
	view, err := a.svc.UpdateProfile(c.Request.Context(), middlewares.ActorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ---- posts ----

func (a *API) ListPosts(c *gin.Context) {
	filters := blog.PostFilters{
		Search:       c.Query("search"),
		CategorySlug: c.Query("category"),
		Ordering:     c.Query("ordering"),
		Page:         queryInt(c, "page", 1),
	}
	page, err := a.svc.ListPosts(c.Request.Context(), middlewares.ActorFrom(c), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPost also dispatches the reserved collection actions that share the
// /posts/ namespace with slugs.
func (a *API) GetPost(c *gin.Context) {
	actor := middlewares.ActorFrom(c)
	ctx := c.Request.Context()

	switch slug := c.Param("slug"); slug {
	case "my_posts":
		page, err := a.svc.MyPosts(ctx, actor, queryInt(c, "page", 1))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	case "featured":
		views, err := a.svc.FeaturedPosts(ctx, actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	case "popular":
		views, err := a.svc.PopularPosts(ctx, actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	default:
		view, err := a.svc.GetPost(ctx, actor, slug)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

type postRequest struct {
	Title        string `json:"title" binding:"required"`
	Excerpt      string `json:"excerpt"`
	Content      string `json:"content" binding:"required"`
	Image        string `json:"image"`
	CategorySlug string `json:"category"`
	Published    bool   `json:"published"`
	Featured     bool   `json:"featured"`
}

func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	var in blog.PostInput
	copier.Copy(&in, &req)
	view, err := a.svc.CreatePost(c.Request.Context(), middlewares.ActorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (a *API) UpdatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	var in blog.PostInput
	copier.Copy(&in, &req)
	view, err := a.svc.UpdatePost(c.Request.Context(), middlewares.ActorFrom(c), c.Param("slug"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *API) DeletePost(c *gin.Context) {
	if err := a.svc.DeletePost(c.Request.Context(), middlewares.ActorFrom(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---- categories ----

func (a *API) ListCategories(c *gin.Context) {
	views, err := a.svc.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (a *API) GetCategory(c *gin.Context) {
	view, err := a.svc.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ---- comments ----

type commentRequest struct {
	PostSlug string `json:"post" binding:"required"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Content  string `json:"content" binding:"required"`
}

func (a *API) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	var in blog.CommentInput
	copier.Copy(&in, &req)
	if err := a.svc.CreateComment(c.Request.Context(), middlewares.ActorFrom(c), in); err != nil {
		respondError(c, err)
		return
	}
	// Only the moderation message goes back; the entity itself stays hidden
	// until approved.
	c.JSON(http.StatusCreated, gin.H{"message": blog.PendingModerationMessage})
}

func (a *API) ListComments(c *gin.Context) {
	views, err := a.svc.ListComments(c.Request.Context(), c.Query("post"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// ---- media ----

func (a *API) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	src, err := file.Open()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	defer src.Close()
	url, err := a.files.Store(src, file.Filename)
	if err != nil {
		respondError(c, apperr.ErrUnavailable)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// ---- misc ----

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
