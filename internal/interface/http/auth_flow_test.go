package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matiasb-dev/authkeep/internal/application"
	"github.com/matiasb-dev/authkeep/internal/domain/entity"
	repo "github.com/matiasb-dev/authkeep/internal/domain/repository"
	handlers "github.com/matiasb-dev/authkeep/internal/interface/http"
	"github.com/matiasb-dev/authkeep/internal/router"
	"github.com/matiasb-dev/authkeep/internal/router/modules"
	"github.com/matiasb-dev/authkeep/pkg/helpers"
	"github.com/matiasb-dev/authkeep/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// memUserRepo and memRBACRepo give the handlers the same error semantics as
// the Postgres layer without a database.

type memUserRepo struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*entity.User
	byEmail map[string]string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*entity.User{}, byEmail: map[string]string{}}
}

func (m *memUserRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return repo.ErrConflict
	}
	m.seq++
	u.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *memUserRepo) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

type memRBACRepo struct {
	mu        sync.Mutex
	seq       int
	users     *memUserRepo
	roles     map[string]*entity.Role
	perms     map[string]*entity.Permission
	userRoles map[string]map[string]bool
	rolePerms map[string]map[string]bool
}

func newMemRBACRepo(users *memUserRepo) *memRBACRepo {
	return &memRBACRepo{
		users:     users,
		roles:     map[string]*entity.Role{},
		perms:     map[string]*entity.Permission{},
		userRoles: map[string]map[string]bool{},
		rolePerms: map[string]map[string]bool{},
	}
}

func (m *memRBACRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("10000000-0000-0000-0000-%012d", m.seq)
}

func (m *memRBACRepo) CreateRole(_ context.Context, name, guard string) (*entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.Name == name && r.GuardName == guard {
			return nil, repo.ErrConflict
		}
	}
	r := &entity.Role{ID: m.nextID(), Name: name, GuardName: guard, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.roles[r.ID] = r
	cp := *r
	return &cp, nil
}

func (m *memRBACRepo) GetRole(_ context.Context, id string) (*entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRBACRepo) ListRoles(_ context.Context) ([]entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRBACRepo) UpdateRole(_ context.Context, id, name string) (*entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for otherID, other := range m.roles {
		if otherID != id && other.Name == name && other.GuardName == r.GuardName {
			return nil, repo.ErrConflict
		}
	}
	r.Name = name
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

func (m *memRBACRepo) DeleteRole(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.roles, id)
	delete(m.rolePerms, id)
	for _, set := range m.userRoles {
		delete(set, id)
	}
	return nil
}

func (m *memRBACRepo) CreatePermission(_ context.Context, name, guard string) (*entity.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.perms {
		if p.Name == name && p.GuardName == guard {
			return nil, repo.ErrConflict
		}
	}
	p := &entity.Permission{ID: m.nextID(), Name: name, GuardName: guard, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.perms[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *memRBACRepo) GetPermission(_ context.Context, id string) (*entity.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.perms[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRBACRepo) ListPermissions(_ context.Context) ([]entity.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Permission, 0, len(m.perms))
	for _, p := range m.perms {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRBACRepo) UpdatePermission(_ context.Context, id, name string) (*entity.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.perms[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (m *memRBACRepo) DeletePermission(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.perms[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.perms, id)
	for _, set := range m.rolePerms {
		delete(set, id)
	}
	return nil
}

func (m *memRBACRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	if _, err := m.users.GetByID(ctx, userID); err != nil {
		return repo.ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[roleID]; !ok {
		return repo.ErrNotFound
	}
	if m.userRoles[userID][roleID] {
		return repo.ErrConflict
	}
	if m.userRoles[userID] == nil {
		m.userRoles[userID] = map[string]bool{}
	}
	m.userRoles[userID][roleID] = true
	return nil
}

func (m *memRBACRepo) RemoveRole(ctx context.Context, userID, roleID string) error {
	if _, err := m.users.GetByID(ctx, userID); err != nil {
		return repo.ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[roleID]; !ok {
		return repo.ErrNotFound
	}
	if !m.userRoles[userID][roleID] {
		return repo.ErrConflict
	}
	delete(m.userRoles[userID], roleID)
	return nil
}

func (m *memRBACRepo) GivePermission(_ context.Context, roleID, permissionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[roleID]; !ok {
		return repo.ErrNotFound
	}
	if _, ok := m.perms[permissionID]; !ok {
		return repo.ErrNotFound
	}
	if m.rolePerms[roleID][permissionID] {
		return repo.ErrConflict
	}
	if m.rolePerms[roleID] == nil {
		m.rolePerms[roleID] = map[string]bool{}
	}
	m.rolePerms[roleID][permissionID] = true
	return nil
}

func (m *memRBACRepo) RevokePermission(_ context.Context, roleID, permissionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[roleID]; !ok {
		return repo.ErrNotFound
	}
	if _, ok := m.perms[permissionID]; !ok {
		return repo.ErrNotFound
	}
	if !m.rolePerms[roleID][permissionID] {
		return repo.ErrConflict
	}
	delete(m.rolePerms[roleID], permissionID)
	return nil
}

func (m *memRBACRepo) UserRoles(_ context.Context, userID string) ([]entity.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Role
	for roleID := range m.userRoles[userID] {
		out = append(out, *m.roles[roleID])
	}
	return out, nil
}

func (m *memRBACRepo) UserPermissions(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for roleID := range m.userRoles[userID] {
		for permID := range m.rolePerms[roleID] {
			name := m.perms[permID].Name
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out, nil
}

func (m *memRBACRepo) RolePermissions(_ context.Context, roleID string) ([]entity.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Permission
	for permID := range m.rolePerms[roleID] {
		out = append(out, *m.perms[permID])
	}
	return out, nil
}

// memSessionStore backs the token service so logout and refresh rotation are
// observable in tests.
type memSessionStore struct {
	mu   sync.Mutex
	byID map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{byID: map[string]string{}}
}

func (m *memSessionStore) Put(_ context.Context, userID, sid string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[sid] = userID
	return nil
}

func (m *memSessionStore) Lookup(_ context.Context, sid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[sid], nil
}

func (m *memSessionStore) Delete(_ context.Context, _ string, sid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[sid]
	delete(m.byID, sid)
	return ok, nil
}

func (m *memSessionStore) DeleteAll(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sid, uid := range m.byID {
		if uid == userID {
			delete(m.byID, sid)
		}
	}
	return nil
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	users  *memUserRepo
	rbac   *memRBACRepo
	tokens *application.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	users := newMemUserRepo()
	rbacRepo := newMemRBACRepo(users)

	tokens := application.NewTokenService(helpers.NewJWTManager("test-secret", time.Hour, 24*time.Hour), newMemSessionStore(), logger, false)
	rbacSvc := application.NewRBACService(rbacRepo, "api")
	authSvc := &application.AuthService{Users: users, Logger: logger}

	authHandler := handlers.NewAuthHandler(authSvc, tokens, logger)
	userHandler := handlers.NewUserHandler(authSvc, logger)
	roleHandler := handlers.NewRoleHandler(rbacSvc, logger)
	permHandler := handlers.NewPermissionHandler(rbacSvc, logger)

	engine := gin.New()
	reg := router.NewRegistry(engine)
	reg.Add(modules.NewAuthModule(authHandler, userHandler, tokens, rbacSvc, nil))
	reg.Add(modules.NewRBACModule(roleHandler, permHandler, tokens, rbacSvc))
	reg.RegisterAll()

	return &testAPI{t: t, engine: engine, users: users, rbac: rbacRepo, tokens: tokens}
}

// seedAdmin creates a superadmin user holding both management permissions and
// returns a bearer token for it.
func (a *testAPI) seedAdmin() string {
	a.t.Helper()
	ctx := context.Background()

	hash, err := helpers.HashPassword("secret1")
	if err != nil {
		a.t.Fatalf("HashPassword: %v", err)
	}
	admin := &entity.User{Email: "admin@x.com", Password: hash, Name: "admin"}
	if err := a.users.Create(ctx, admin); err != nil {
		a.t.Fatalf("seed admin: %v", err)
	}

	role, err := a.rbac.CreateRole(ctx, "superadmin", "api")
	if err != nil {
		a.t.Fatalf("seed role: %v", err)
	}
	for _, name := range []string{"role manage", "permission manage"} {
		perm, err := a.rbac.CreatePermission(ctx, name, "api")
		if err != nil {
			a.t.Fatalf("seed permission: %v", err)
		}
		if err := a.rbac.GivePermission(ctx, role.ID, perm.ID); err != nil {
			a.t.Fatalf("seed grant: %v", err)
		}
	}
	if err := a.rbac.AssignRole(ctx, admin.ID, role.ID); err != nil {
		a.t.Fatalf("seed assignment: %v", err)
	}

	token, _, err := a.tokens.Issue(ctx, admin.ID)
	if err != nil {
		a.t.Fatalf("issue admin token: %v", err)
	}
	return token
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestRegisterLoginAndRoleAssignmentFlow(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.seedAdmin()

	// Register returns a token envelope.
	w := api.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":                  "user",
		"email":                 "a@x.com",
		"password":              "secret1",
		"password_confirmation": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	envelope := decode(t, w)
	if envelope["access_token"] == "" || envelope["token_type"] != "bearer" {
		t.Fatalf("unexpected token envelope: %v", envelope)
	}

	// Wrong password answers the fixed 401 error envelope.
	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "a@x.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "Unauthorized" {
		t.Fatalf("unexpected 401 body: %v", body)
	}

	// Create a role as admin.
	w = api.do(http.MethodPost, "/api/role", adminToken, map[string]any{"name": "worker"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create role: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	role := decode(t, w)["role"].(map[string]any)
	roleID := role["id"].(string)

	// Find the registered user's id.
	userA, err := api.users.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("lookup user: %v", err)
	}

	// Assign once succeeds, twice answers 400.
	w = api.do(http.MethodPost, "/api/role/assignRole", adminToken, map[string]any{
		"user_id": userA.ID,
		"role_id": roleID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("assign: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = api.do(http.MethodPost, "/api/role/assignRole", adminToken, map[string]any{
		"user_id": userA.ID,
		"role_id": roleID,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate assign: expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"password mismatch", map[string]any{"name": "user", "email": "a@x.com", "password": "secret1", "password_confirmation": "other"}},
		{"short password", map[string]any{"name": "user", "email": "a@x.com", "password": "abc", "password_confirmation": "abc"}},
		{"bad email", map[string]any{"name": "user", "email": "not-an-email", "password": "secret1", "password_confirmation": "secret1"}},
		{"missing name", map[string]any{"email": "a@x.com", "password": "secret1", "password_confirmation": "secret1"}},
	}
	for _, tc := range cases {
		w := api.do(http.MethodPost, "/api/auth/register", "", tc.body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d: %s", tc.name, w.Code, w.Body.String())
		}
		if body := decode(t, w); body["message"] == "" {
			t.Fatalf("%s: expected a message, got %v", tc.name, body)
		}
	}
}

func TestRegisterDuplicateEmailAnswers422(t *testing.T) {
	api := newTestAPI(t)
	payload := map[string]any{
		"name": "user", "email": "a@x.com",
		"password": "secret1", "password_confirmation": "secret1",
	}

	if w := api.do(http.MethodPost, "/api/auth/register", "", payload); w.Code != http.StatusOK {
		t.Fatalf("first register: expected 200, got %d", w.Code)
	}
	w := api.do(http.MethodPost, "/api/auth/register", "", payload)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate register: expected 422, got %d", w.Code)
	}
}

func TestMeLogoutAndRefresh(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "user", "email": "a@x.com",
		"password": "secret1", "password_confirmation": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d", w.Code)
	}
	token := decode(t, w)["access_token"].(string)

	w = api.do(http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if me := decode(t, w); me["email"] != "a@x.com" {
		t.Fatalf("unexpected profile: %v", me)
	}

	w = api.do(http.MethodPost, "/api/auth/refresh", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	fresh := decode(t, w)["access_token"].(string)
	if fresh == token {
		t.Fatal("refresh must rotate the token")
	}

	// The rotated-out token no longer authenticates.
	w = api.do(http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me with rotated-out token: expected 401, got %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "Token revoked" {
		t.Fatalf("unexpected 401 body: %v", body)
	}

	w = api.do(http.MethodPost, "/api/auth/logout", fresh, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Neither the logged-out token nor no token at all gets through.
	w = api.do(http.MethodGet, "/api/auth/me", fresh, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me with revoked token: expected 401, got %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "Token revoked" {
		t.Fatalf("unexpected 401 body: %v", body)
	}
	w = api.do(http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", w.Code)
	}
}

func TestRoleRoutesRequireManagementRole(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "user", "email": "a@x.com",
		"password": "secret1", "password_confirmation": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d", w.Code)
	}
	token := decode(t, w)["access_token"].(string)

	if w := api.do(http.MethodGet, "/api/role", token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("role list as plain user: expected 403, got %d", w.Code)
	}
	if w := api.do(http.MethodGet, "/api/role", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("role list without token: expected 401, got %d", w.Code)
	}
}

func TestRoleCRUDAndErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.seedAdmin()

	// Duplicate name rejected at create.
	if w := api.do(http.MethodPost, "/api/role", adminToken, map[string]any{"name": "worker"}); w.Code != http.StatusCreated {
		t.Fatalf("create role: expected 201, got %d", w.Code)
	}
	w := api.do(http.MethodPost, "/api/role", adminToken, map[string]any{"name": "worker"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate role: expected 422, got %d", w.Code)
	}

	// Name length rules count characters, not bytes: an 18-rune Cyrillic
	// name is valid even though it is 36 bytes.
	if w := api.do(http.MethodPost, "/api/role", adminToken, map[string]any{"name": "ab"}); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short name: expected 422, got %d", w.Code)
	}
	if w := api.do(http.MethodPost, "/api/role", adminToken, map[string]any{"name": "руководительотдела"}); w.Code != http.StatusCreated {
		t.Fatalf("multibyte name: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := api.do(http.MethodPut, "/api/role/20000000-0000-0000-0000-000000000001", adminToken, map[string]any{"name": "  ab  "}); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("padded short name: expected 422, got %d: %s", w.Code, w.Body.String())
	}

	// Unknown ids answer 404.
	if w := api.do(http.MethodGet, "/api/role/20000000-0000-0000-0000-000000000001", adminToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing role: expected 404, got %d", w.Code)
	}
	if w := api.do(http.MethodGet, "/api/role/not-a-uuid", adminToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("malformed id: expected 404, got %d", w.Code)
	}
}

func TestDeleteRoleCascades(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.seedAdmin()
	ctx := context.Background()

	w := api.do(http.MethodPost, "/api/role", adminToken, map[string]any{"name": "worker"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create role: expected 201, got %d", w.Code)
	}
	role := decode(t, w)["role"].(map[string]any)
	roleID := role["id"].(string)

	perm, err := api.rbac.CreatePermission(ctx, "report view", "api")
	if err != nil {
		t.Fatalf("create permission: %v", err)
	}
	if err := api.rbac.GivePermission(ctx, roleID, perm.ID); err != nil {
		t.Fatalf("give permission: %v", err)
	}

	if w := api.do(http.MethodDelete, "/api/role/"+roleID, adminToken, nil); w.Code != http.StatusOK {
		t.Fatalf("delete role: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Grants against the deleted role fail with 404, and its edges are gone.
	w = api.do(http.MethodPost, "/api/role/givePermission", adminToken, map[string]any{
		"role_id":       roleID,
		"permission_id": perm.ID,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("give to deleted role: expected 404, got %d", w.Code)
	}
	if perms, _ := api.rbac.RolePermissions(ctx, roleID); len(perms) != 0 {
		t.Fatalf("expected no surviving grants, got %v", perms)
	}
}

// failingRBACRepo fails every read with a non-sentinel error, standing in
// for a database outage.
type failingRBACRepo struct {
	repo.RBACRepository
	err error
}

func (f *failingRBACRepo) GetRole(context.Context, string) (*entity.Role, error) {
	return nil, f.err
}

func (f *failingRBACRepo) GetPermission(context.Context, string) (*entity.Permission, error) {
	return nil, f.err
}

func TestShowAnswersServerErrorOnRepositoryFailure(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	rbacSvc := application.NewRBACService(&failingRBACRepo{err: errors.New("connection refused")}, "api")

	engine := gin.New()
	engine.GET("/role/:id", handlers.NewRoleHandler(rbacSvc, logger).Show)
	engine.GET("/permission/:id", handlers.NewPermissionHandler(rbacSvc, logger).Show)

	for _, path := range []string{
		"/role/20000000-0000-0000-0000-000000000001",
		"/permission/20000000-0000-0000-0000-000000000001",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestPermissionGrantAndRevoke(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.seedAdmin()
	ctx := context.Background()

	w := api.do(http.MethodPost, "/api/permission", adminToken, map[string]any{"name": "report view"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create permission: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	perm := decode(t, w)["permission"].(map[string]any)
	permID := perm["id"].(string)

	role, err := api.rbac.CreateRole(ctx, "reporter", "api")
	if err != nil {
		t.Fatalf("create role: %v", err)
	}

	give := map[string]any{"role_id": role.ID, "permission_id": permID}
	if w := api.do(http.MethodPost, "/api/role/givePermission", adminToken, give); w.Code != http.StatusOK {
		t.Fatalf("give: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := api.do(http.MethodPost, "/api/role/givePermission", adminToken, give); w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate give: expected 400, got %d", w.Code)
	}
	if w := api.do(http.MethodPost, "/api/role/revokePermission", adminToken, give); w.Code != http.StatusOK {
		t.Fatalf("revoke: expected 200, got %d", w.Code)
	}
	if w := api.do(http.MethodPost, "/api/role/revokePermission", adminToken, give); w.Code != http.StatusBadRequest {
		t.Fatalf("second revoke: expected 400, got %d", w.Code)
	}

	// Missing entity on an edge mutation answers 404.
	w = api.do(http.MethodPost, "/api/role/givePermission", adminToken, map[string]any{
		"role_id":       "20000000-0000-0000-0000-000000000009",
		"permission_id": permID,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("give to missing role: expected 404, got %d", w.Code)
	}
}
