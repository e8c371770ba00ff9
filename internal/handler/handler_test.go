package handler

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/iliyamo/photoshare-api/internal/middleware"
    "github.com/iliyamo/photoshare-api/internal/model"
    "github.com/iliyamo/photoshare-api/internal/queue"
    "github.com/iliyamo/photoshare-api/internal/repository"
    "github.com/iliyamo/photoshare-api/internal/service"
    "github.com/iliyamo/photoshare-api/internal/utils"
)

// --- In-memory user store ---

type memUsers struct {
    mu      sync.Mutex
    byEmail map[string]model.User
    nextID  uint64
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]model.User{}} }

func (s *memUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    u, ok := s.byEmail[email]
    if !ok {
        return model.User{}, repository.ErrUserNotFound
    }
    return u, nil
}

func (s *memUsers) FindByUsername(_ context.Context, username string) (model.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, u := range s.byEmail {
        if u.Username == username {
            return u, nil
        }
    }
    return model.User{}, repository.ErrUserNotFound
}

func (s *memUsers) Create(_ context.Context, u *model.User) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, existing := range s.byEmail {
        if existing.Email == u.Email || existing.Username == u.Username {
            return repository.ErrUserExists
        }
    }
    s.nextID++
    u.ID = s.nextID
    s.byEmail[u.Email] = *u
    return nil
}

func (s *memUsers) CreateFirstAdmin(_ context.Context, u *model.User) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if len(s.byEmail) > 0 {
        return false, nil
    }
    s.nextID++
    u.ID = s.nextID
    u.Role = model.RoleAdmin
    s.byEmail[u.Email] = *u
    return true, nil
}

func (s *memUsers) Save(_ context.Context, u *model.User) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.byEmail[u.Email]; !ok {
        return repository.ErrUserNotFound
    }
    s.byEmail[u.Email] = *u
    return nil
}

func (s *memUsers) ListAll(context.Context) ([]model.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]model.User, 0, len(s.byEmail))
    for _, u := range s.byEmail {
        out = append(out, u)
    }
    return out, nil
}

// --- Recording notifier ---

type recordingNotifier struct {
    mu     sync.Mutex
    events []queue.SignupEvent
}

func (n *recordingNotifier) NotifySignup(_ context.Context, ev queue.SignupEvent) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.events = append(n.events, ev)
    return nil
}

func (n *recordingNotifier) count() int {
    n.mu.Lock()
    defer n.mu.Unlock()
    return len(n.events)
}

// --- Image store and media host stubs ---

type stubImages struct {
    images map[uint64]*model.Image
}

func (s *stubImages) Create(context.Context, *model.Image, []string) error { return nil }
func (s *stubImages) GetByID(_ context.Context, id uint64) (*model.Image, error) {
    img, ok := s.images[id]
    if !ok {
        return nil, repository.ErrImageNotFound
    }
    cp := *img
    return &cp, nil
}
func (s *stubImages) List(context.Context, int, int) ([]*model.Image, error)   { return nil, nil }
func (s *stubImages) ListByUser(context.Context, uint64) ([]*model.Image, error) { return nil, nil }
func (s *stubImages) Update(context.Context, uint64, uint64, string, []string) error {
    return nil
}
func (s *stubImages) SetEditedURL(context.Context, uint64, string) error { return nil }
func (s *stubImages) SetQRCodeURL(context.Context, uint64, string) error { return nil }
func (s *stubImages) Delete(context.Context, uint64) error               { return nil }

type stubHost struct{}

func (stubHost) Upload(_ context.Context, r io.Reader, publicID string) (service.UploadedAsset, error) {
    _, err := io.Copy(io.Discard, r)
    return service.UploadedAsset{URL: "https://cdn.test/" + publicID, PublicID: publicID}, err
}
func (stubHost) Destroy(context.Context, string) error { return nil }
func (stubHost) URL(publicID string, t service.Transform) (string, error) {
    return "https://cdn.test/" + t.String() + "/" + publicID, nil
}

// --- Fake comment and tag stores ---

type fakeComments struct {
    mu       sync.Mutex
    comments map[uint64]model.Comment
    nextID   uint64
}

func newFakeComments() *fakeComments { return &fakeComments{comments: map[uint64]model.Comment{}} }

func (f *fakeComments) ListByImage(_ context.Context, imageID uint64) ([]model.Comment, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := []model.Comment{}
    for _, c := range f.comments {
        if c.ImageID == imageID {
            out = append(out, c)
        }
    }
    return out, nil
}

func (f *fakeComments) GetByID(_ context.Context, id uint64) (model.Comment, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    c, ok := f.comments[id]
    if !ok {
        return model.Comment{}, repository.ErrCommentNotFound
    }
    return c, nil
}

func (f *fakeComments) Create(_ context.Context, imageID, userID uint64, text string) (model.Comment, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.nextID++
    c := model.Comment{ID: f.nextID, ImageID: imageID, UserID: userID, Text: text}
    f.comments[c.ID] = c
    return c, nil
}

func (f *fakeComments) Update(_ context.Context, id, userID uint64, text string) (model.Comment, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    c, ok := f.comments[id]
    if !ok || c.UserID != userID {
        return model.Comment{}, repository.ErrCommentNotFound
    }
    c.Text = text
    f.comments[id] = c
    return c, nil
}

func (f *fakeComments) Delete(_ context.Context, id uint64) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if _, ok := f.comments[id]; !ok {
        return repository.ErrCommentNotFound
    }
    delete(f.comments, id)
    return nil
}

type fakeTags struct {
    CreateFunc func(ctx context.Context, name string) (model.Tag, error)
}

func (f *fakeTags) List(context.Context, int, int) ([]model.Tag, error) { return []model.Tag{}, nil }
func (f *fakeTags) GetByID(_ context.Context, id uint64) (model.Tag, error) {
    if id == 1 {
        return model.Tag{ID: 1, Name: "sunset"}, nil
    }
    return model.Tag{}, repository.ErrTagNotFound
}
func (f *fakeTags) Create(ctx context.Context, name string) (model.Tag, error) {
    return f.CreateFunc(ctx, name)
}
func (f *fakeTags) Rename(_ context.Context, id uint64, name string) (model.Tag, error) {
    return model.Tag{ID: id, Name: name}, nil
}
func (f *fakeTags) Delete(_ context.Context, id uint64) (model.Tag, error) {
    return model.Tag{ID: id}, nil
}

// --- Fixture ---

type apiFixture struct {
    e        *echo.Echo
    auth     *service.Authenticator
    users    *memUsers
    notifier *recordingNotifier
    comments *fakeComments
    tags     *fakeTags
}

func newAPIFixture(t *testing.T) *apiFixture {
    t.Helper()
    codec, err := utils.NewTokenCodec("handler-secret", "HS256")
    require.NoError(t, err)
    users := newMemUsers()
    auth := service.NewAuthenticator(users, codec, utils.NewHasher(bcrypt.MinCost), nil, service.DefaultAuthPolicy())
    require.NoError(t, auth.Bootstrap(context.Background()))

    images := service.NewImageService(&stubImages{images: map[uint64]*model.Image{
        1: {ID: 1, UserID: 1, URL: "https://cdn.test/a", PublicID: "photoshare/a"},
    }}, stubHost{})

    f := &apiFixture{
        e:        echo.New(),
        auth:     auth,
        users:    users,
        notifier: &recordingNotifier{},
        comments: newFakeComments(),
        tags:     &fakeTags{},
    }
    f.e.Validator = NewValidator()

    ah := NewAuthHandler(auth, f.notifier, "http://localhost:8080")
    uh := NewUserHandler(auth, images, users, nil)
    ih := NewImageHandler(images, users)
    ch := NewCommentHandler(f.comments, images)
    th := NewTagHandler(f.tags)

    requireAuth := middleware.Authenticate(auth)
    staff := middleware.RequireRole(model.RoleAdmin, model.RoleModerator)

    v1 := f.e.Group("/v1")
    v1.POST("/auth/signup", ah.Signup)
    v1.POST("/auth/login", ah.Login)
    v1.GET("/auth/refresh_token", ah.RefreshFromHeader)
    v1.POST("/auth/refresh_token", ah.RefreshFromBody)
    v1.POST("/auth/logout", ah.Logout, requireAuth)
    v1.GET("/auth/confirmed_email/:token", ah.ConfirmEmail)
    v1.POST("/auth/request_email", ah.RequestEmail)
    v1.GET("/users/me", uh.Me, requireAuth)
    v1.PUT("/users/password", uh.ChangePassword, requireAuth)
    v1.PATCH("/users/role", uh.ChangeRole, requireAuth, middleware.RequireRole(model.RoleAdmin))
    v1.GET("/transform", ih.TransformURL)
    v1.POST("/images/:id/transform", ih.Transform, requireAuth)
    v1.GET("/images/:id/comments", ch.List)
    v1.POST("/images/:id/comments", ch.Create, requireAuth)
    v1.PATCH("/images/:id/comments/:comment_id", ch.Update, requireAuth)
    v1.DELETE("/images/:id/comments/:comment_id", ch.Delete, requireAuth, staff)
    v1.GET("/tags/:id", th.Get)
    v1.POST("/tags", th.Create, requireAuth)
    return f
}

func (f *apiFixture) do(method, target, body, token string) *httptest.ResponseRecorder {
    var r io.Reader
    if body != "" {
        r = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, target, r)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    if token != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    f.e.ServeHTTP(rec, req)
    return rec
}

// confirmedLogin signs up, confirms and logs in, returning the tokens.
func (f *apiFixture) confirmedLogin(t *testing.T, username, email string) tokenResp {
    t.Helper()
    rec := f.do(http.MethodPost, "/v1/auth/signup",
        `{"username":"`+username+`","email":"`+email+`","password":"secret123"}`, "")
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    tok, err := f.auth.IssueEmailToken(email)
    require.NoError(t, err)
    require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/auth/confirmed_email/"+tok.Raw, "", "").Code)
    rec = f.do(http.MethodPost, "/v1/auth/login", `{"email":"`+email+`","password":"secret123"}`, "")
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    var out tokenResp
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    return out
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var m map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
    return m
}

// --- Auth ---

func TestAuthHandler_SignupConfirmLogin(t *testing.T) {
    f := newAPIFixture(t)

    rec := f.do(http.MethodPost, "/v1/auth/signup", `{"username":"alice","email":"alice@example.com","password":"secret123"}`, "")
    require.Equal(t, http.StatusCreated, rec.Code)
    body := decode(t, rec)
    user := body["user"].(map[string]any)
    assert.Equal(t, "admin", user["role"], "first signup is promoted")
    assert.NotContains(t, rec.Body.String(), "password")
    require.Equal(t, 1, f.notifier.count())
    assert.Equal(t, "http://localhost:8080", f.notifier.events[0].HostURL)

    t.Run("duplicate signup is a conflict", func(t *testing.T) {
        rec := f.do(http.MethodPost, "/v1/auth/signup", `{"username":"alice2","email":"alice@example.com","password":"secret123"}`, "")
        assert.Equal(t, http.StatusConflict, rec.Code)
    })

    t.Run("invalid email is rejected", func(t *testing.T) {
        rec := f.do(http.MethodPost, "/v1/auth/signup", `{"username":"carol","email":"nope","password":"secret123"}`, "")
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })

    t.Run("login before confirmation", func(t *testing.T) {
        rec := f.do(http.MethodPost, "/v1/auth/login", `{"email":"alice@example.com","password":"secret123"}`, "")
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
    })

    t.Run("garbage confirmation token", func(t *testing.T) {
        rec := f.do(http.MethodGet, "/v1/auth/confirmed_email/garbage", "", "")
        assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    })

    tok, err := f.auth.IssueEmailToken("alice@example.com")
    require.NoError(t, err)
    for i := 0; i < 2; i++ {
        rec := f.do(http.MethodGet, "/v1/auth/confirmed_email/"+tok.Raw, "", "")
        assert.Equal(t, http.StatusOK, rec.Code, "confirmation is idempotent")
    }

    rec = f.do(http.MethodPost, "/v1/auth/login", `{"email":"alice@example.com","password":"secret123"}`, "")
    require.Equal(t, http.StatusOK, rec.Code)
    var pair tokenResp
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
    assert.Equal(t, "bearer", pair.TokenType)

    rec = f.do(http.MethodGet, "/v1/users/me", "", pair.AccessToken)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "alice@example.com", decode(t, rec)["email"])

    t.Run("refresh token is not an access token", func(t *testing.T) {
        rec := f.do(http.MethodGet, "/v1/users/me", "", pair.RefreshToken)
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
    })
}

func TestAuthHandler_RefreshAndLogout(t *testing.T) {
    f := newAPIFixture(t)
    first := f.confirmedLogin(t, "alice", "alice@example.com")

    rec := f.do(http.MethodGet, "/v1/auth/refresh_token", "", first.RefreshToken)
    require.Equal(t, http.StatusOK, rec.Code)
    var second tokenResp
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
    assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

    rec = f.do(http.MethodGet, "/v1/auth/refresh_token", "", first.RefreshToken)
    assert.Equal(t, http.StatusUnauthorized, rec.Code, "superseded refresh token")

    rec = f.do(http.MethodGet, "/v1/auth/refresh_token", "", second.AccessToken)
    assert.Equal(t, http.StatusUnauthorized, rec.Code, "access token used for refresh")

    rec = f.do(http.MethodGet, "/v1/auth/refresh_token", "", "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    rec = f.do(http.MethodPost, "/v1/auth/logout", "", second.AccessToken)
    require.Equal(t, http.StatusNoContent, rec.Code)

    rec = f.do(http.MethodPost, "/v1/auth/refresh_token", `{"refresh_token":"`+second.RefreshToken+`"}`, "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code, "logout clears the stored refresh token")
}

func TestAuthHandler_RequestEmail(t *testing.T) {
    f := newAPIFixture(t)
    f.confirmedLogin(t, "alice", "alice@example.com")
    rec := f.do(http.MethodPost, "/v1/auth/signup", `{"username":"bob","email":"bob@example.com","password":"secret123"}`, "")
    require.Equal(t, http.StatusCreated, rec.Code)
    before := f.notifier.count()

    rec = f.do(http.MethodPost, "/v1/auth/request_email", `{"email":"ghost@example.com"}`, "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, before, f.notifier.count(), "unknown address sends nothing")

    rec = f.do(http.MethodPost, "/v1/auth/request_email", `{"email":"bob@example.com"}`, "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, before+1, f.notifier.count())

    rec = f.do(http.MethodPost, "/v1/auth/request_email", `{"email":"alice@example.com"}`, "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "already confirmed")
}

// --- Users ---

func TestUserHandler_ChangeRole(t *testing.T) {
    f := newAPIFixture(t)
    admin := f.confirmedLogin(t, "alice", "alice@example.com")
    user := f.confirmedLogin(t, "bob", "bob@example.com")

    rec := f.do(http.MethodPatch, "/v1/users/role", `{"target_email":"alice@example.com","role":"user"}`, user.AccessToken)
    assert.Equal(t, http.StatusForbidden, rec.Code)

    rec = f.do(http.MethodPatch, "/v1/users/role", `{"target_email":"bob@example.com","role":"superuser"}`, admin.AccessToken)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = f.do(http.MethodPatch, "/v1/users/role", `{"target_email":"ghost@example.com","role":"moderator"}`, admin.AccessToken)
    assert.Equal(t, http.StatusNotFound, rec.Code)

    rec = f.do(http.MethodPatch, "/v1/users/role", `{"target_email":"bob@example.com","role":"Moderator"}`, admin.AccessToken)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

    rec = f.do(http.MethodGet, "/v1/users/me", "", user.AccessToken)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "moderator", decode(t, rec)["role"], "role change is visible immediately")
}

func TestUserHandler_ChangePassword(t *testing.T) {
    f := newAPIFixture(t)
    tok := f.confirmedLogin(t, "alice", "alice@example.com")

    rec := f.do(http.MethodPut, "/v1/users/password", `{"old_password":"wrong","new_password":"newsecret"}`, tok.AccessToken)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    rec = f.do(http.MethodPut, "/v1/users/password", `{"old_password":"secret123","new_password":"secret123"}`, tok.AccessToken)
    assert.Equal(t, http.StatusBadRequest, rec.Code, "new password must differ")

    rec = f.do(http.MethodPut, "/v1/users/password", `{"old_password":"secret123","new_password":"newsecret"}`, tok.AccessToken)
    require.Equal(t, http.StatusNoContent, rec.Code)

    rec = f.do(http.MethodPost, "/v1/auth/login", `{"email":"alice@example.com","password":"newsecret"}`, "")
    assert.Equal(t, http.StatusOK, rec.Code)
}

// --- Images ---

func TestImageHandler_TransformValidation(t *testing.T) {
    f := newAPIFixture(t)
    owner := f.confirmedLogin(t, "alice", "alice@example.com")
    other := f.confirmedLogin(t, "bob", "bob@example.com")

    rec := f.do(http.MethodPost, "/v1/images/1/transform", `{"crop":"explode"}`, owner.AccessToken)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = f.do(http.MethodPost, "/v1/images/1/transform", `{"effect":"sepia;drop"}`, owner.AccessToken)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = f.do(http.MethodPost, "/v1/images/1/transform", `{}`, owner.AccessToken)
    assert.Equal(t, http.StatusBadRequest, rec.Code, "empty transformation")

    rec = f.do(http.MethodPost, "/v1/images/1/transform", `{"width":300,"crop":"fill"}`, other.AccessToken)
    assert.Equal(t, http.StatusForbidden, rec.Code)

    rec = f.do(http.MethodPost, "/v1/images/1/transform", `{"width":300,"crop":"fill","effect":"sepia"}`, owner.AccessToken)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    assert.Equal(t, "https://cdn.test/w_300,c_fill,e_sepia/photoshare/a", decode(t, rec)["edited_url"])
}

func TestImageHandler_TransformURL(t *testing.T) {
    f := newAPIFixture(t)

    rec := f.do(http.MethodGet, "/v1/transform?public_id=photoshare/x&width=100&angle=90", "", "")
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    assert.Equal(t, "https://cdn.test/w_100,a_90/photoshare/x", decode(t, rec)["url"])

    rec = f.do(http.MethodGet, "/v1/transform?width=100", "", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Comments ---

func TestCommentHandler(t *testing.T) {
    f := newAPIFixture(t)
    admin := f.confirmedLogin(t, "alice", "alice@example.com")
    bob := f.confirmedLogin(t, "bob", "bob@example.com")

    rec := f.do(http.MethodPost, "/v1/images/99/comments", `{"comment":"nice"}`, bob.AccessToken)
    assert.Equal(t, http.StatusNotFound, rec.Code)

    for _, text := range []string{"   ", "<b></b>", strings.Repeat("x", 256)} {
        rec := f.do(http.MethodPost, "/v1/images/1/comments", `{"comment":"`+text+`"}`, bob.AccessToken)
        assert.Equal(t, http.StatusBadRequest, rec.Code, "comment %q", text)
    }

    rec = f.do(http.MethodPost, "/v1/images/1/comments", `{"comment":"<i>lovely</i> light"}`, bob.AccessToken)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    assert.Equal(t, "lovely light", decode(t, rec)["comment"])

    rec = f.do(http.MethodGet, "/v1/images/1/comments", "", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Len(t, decode(t, rec)["items"], 1)

    rec = f.do(http.MethodPatch, "/v1/images/1/comments/1", `{"comment":"hijack"}`, admin.AccessToken)
    assert.Equal(t, http.StatusNotFound, rec.Code, "only the author edits")

    rec = f.do(http.MethodPatch, "/v1/images/1/comments/1", `{"comment":"edited"}`, bob.AccessToken)
    assert.Equal(t, http.StatusOK, rec.Code)

    rec = f.do(http.MethodDelete, "/v1/images/1/comments/1", "", bob.AccessToken)
    assert.Equal(t, http.StatusForbidden, rec.Code, "plain users cannot delete")

    rec = f.do(http.MethodDelete, "/v1/images/2/comments/1", "", admin.AccessToken)
    assert.Equal(t, http.StatusNotFound, rec.Code, "comment belongs to another image")

    rec = f.do(http.MethodDelete, "/v1/images/1/comments/1", "", admin.AccessToken)
    assert.Equal(t, http.StatusNoContent, rec.Code)
}

// --- Tags ---

func TestTagHandler(t *testing.T) {
    f := newAPIFixture(t)
    tok := f.confirmedLogin(t, "alice", "alice@example.com")

    f.tags.CreateFunc = func(_ context.Context, name string) (model.Tag, error) {
        if name == "taken" {
            return model.Tag{}, repository.ErrConflict
        }
        return model.Tag{ID: 7, Name: name}, nil
    }

    rec := f.do(http.MethodPost, "/v1/tags", `{"name":"`+strings.Repeat("t", service.MaxTagLength+1)+`"}`, tok.AccessToken)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = f.do(http.MethodPost, "/v1/tags", `{"name":"taken"}`, tok.AccessToken)
    assert.Equal(t, http.StatusConflict, rec.Code)

    rec = f.do(http.MethodPost, "/v1/tags", `{"name":" sunset "}`, tok.AccessToken)
    require.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, "sunset", decode(t, rec)["name"])

    rec = f.do(http.MethodPost, "/v1/tags", `{"name":"x"}`, "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/tags/1", "", "").Code)
    assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/tags/2", "", "").Code)
    assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/v1/tags/abc", "", "").Code)
}

// --- Helpers ---

func TestPagination(t *testing.T) {
    e := echo.New()
    tests := []struct {
        query         string
        offset, limit int
    }{
        {"", 0, defaultLimit},
        {"?offset=5&limit=10", 5, 10},
        {"?offset=-3&limit=0", 0, defaultLimit},
        {"?limit=1000", 0, maxLimit},
        {"?offset=x&limit=y", 0, defaultLimit},
    }
    for _, tt := range tests {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), httptest.NewRecorder())
        offset, limit := pagination(c)
        assert.Equal(t, tt.offset, offset, tt.query)
        assert.Equal(t, tt.limit, limit, tt.query)
    }
}

func TestRespondError(t *testing.T) {
    e := echo.New()
    tests := []struct {
        err  error
        code int
    }{
        {service.ErrInvalidCredentials, http.StatusUnauthorized},
        {service.ErrStaleToken, http.StatusUnauthorized},
        {service.ErrForbidden, http.StatusForbidden},
        {repository.ErrForbidden, http.StatusForbidden},
        {repository.ErrTagNotFound, http.StatusNotFound},
        {repository.ErrConflict, http.StatusConflict},
        {service.ErrTooManyTags, http.StatusBadRequest},
        {context.DeadlineExceeded, http.StatusGatewayTimeout},
        {errors.New("boom"), http.StatusInternalServerError},
    }
    for _, tt := range tests {
        rec := httptest.NewRecorder()
        c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
        require.NoError(t, respondError(c, tt.err))
        assert.Equal(t, tt.code, rec.Code, tt.err.Error())
    }
}
