package router

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/password"
	"github.com/fastygo/taskboard/pkg/token"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

const testSecret = "router-test-secret"

type app struct {
	t       *testing.T
	handler fasthttp.RequestHandler
}

type response struct {
	status int
	body   []byte
}

func (r response) decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, dst), string(r.body))
}

func (r response) message(t *testing.T) string {
	var out struct {
		Message string `json:"message"`
	}
	r.decode(t, &out)
	return out.Message
}

type taskJSON struct {
	ID        string `json:"_id"`
	User      string `json:"user"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := boltInfra.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := token.NewService(testSecret)
	require.NoError(t, err)

	users := boltRepo.NewUserRepository(db)
	tasks := boltRepo.NewTaskRepository(db)
	adapter := httpcontext.NewAdapter(5 * time.Second)

	mon := monitor.New(time.Hour, nil)
	mon.Add("bolt", func(ctx context.Context) error { return boltInfra.Ping(ctx, db) }, 0)
	mon.Refresh()

	handlers := Handlers{
		Auth:    apiHandler.NewAuthHandler(authUC.New(users, password.New(bcrypt.MinCost), tokens, nil), adapter, nil),
		Profile: apiHandler.NewProfileHandler(profileUC.New(users, nil, nil), adapter, nil),
		Task:    apiHandler.NewTaskHandler(taskUC.New(tasks, nil), adapter, nil),
		Health:  apiHandler.NewHealthHandler(mon, adapter, nil),
	}
	handler := New(handlers,
		middleware.JWTAuth(tokens, nil),
		middleware.AccessLog(nil),
		middleware.CORS([]string{"*"}),
	)
	return &app{t: t, handler: handler}
}

func (a *app) do(method, path, bearer, body string) response {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	if bearer != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+bearer)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	a.handler(ctx)

	return response{
		status: ctx.Response.StatusCode(),
		body:   append([]byte(nil), ctx.Response.Body()...),
	}
}

func (a *app) register(name, email, pw string) response {
	return a.do(fasthttp.MethodPost, "/api/auth/register", "",
		fmt.Sprintf(`{"name":%q,"email":%q,"password":%q}`, name, email, pw))
}

func (a *app) login(email, pw string) string {
	a.t.Helper()
	res := a.do(fasthttp.MethodPost, "/api/auth/login", "", fmt.Sprintf(`{"email":%q,"password":%q}`, email, pw))
	require.Equal(a.t, fasthttp.StatusOK, res.status, string(res.body))
	var out struct {
		Token string `json:"token"`
	}
	res.decode(a.t, &out)
	require.NotEmpty(a.t, out.Token)
	return out.Token
}

func (a *app) createTask(bearer, title string) taskJSON {
	a.t.Helper()
	res := a.do(fasthttp.MethodPost, "/api/tasks", bearer, fmt.Sprintf(`{"title":%q}`, title))
	require.Equal(a.t, fasthttp.StatusCreated, res.status, string(res.body))
	var task taskJSON
	res.decode(a.t, &task)
	return task
}

func (a *app) listTasks(bearer string) []taskJSON {
	a.t.Helper()
	res := a.do(fasthttp.MethodGet, "/api/tasks", bearer, "")
	require.Equal(a.t, fasthttp.StatusOK, res.status, string(res.body))
	var tasks []taskJSON
	res.decode(a.t, &tasks)
	return tasks
}

func TestTaskLifecycle(t *testing.T) {
	a := newApp(t)

	res := a.register("Ann", "ann@x.com", "pw1")
	require.Equal(t, fasthttp.StatusCreated, res.status)
	assert.Equal(t, "User registered successfully", res.message(t))

	tok := a.login("ann@x.com", "pw1")
	assert.Empty(t, a.listTasks(tok))

	created := a.createTask(tok, "Buy milk")
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)
	assert.NotEmpty(t, created.ID)

	res = a.do(fasthttp.MethodPut, "/api/tasks/"+created.ID, tok, `{"completed":true}`)
	require.Equal(t, fasthttp.StatusOK, res.status)
	var updated taskJSON
	res.decode(t, &updated)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.True(t, updated.Completed)

	res = a.do(fasthttp.MethodDelete, "/api/tasks/"+created.ID, tok, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	assert.Equal(t, "Task deleted successfully", res.message(t))

	assert.Empty(t, a.listTasks(tok))
}

func TestTasks_NewestFirst(t *testing.T) {
	a := newApp(t)
	require.Equal(t, fasthttp.StatusCreated, a.register("Ann", "ann@x.com", "pw1").status)
	tok := a.login("ann@x.com", "pw1")

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		ids = append(ids, a.createTask(tok, title).ID)
	}

	tasks := a.listTasks(tok)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestTasks_OwnershipIsolation(t *testing.T) {
	a := newApp(t)
	require.Equal(t, fasthttp.StatusCreated, a.register("Ann", "ann@x.com", "pw1").status)
	require.Equal(t, fasthttp.StatusCreated, a.register("Bob", "bob@x.com", "pw2").status)
	ann := a.login("ann@x.com", "pw1")
	bob := a.login("bob@x.com", "pw2")

	task := a.createTask(ann, "Buy milk")

	assert.Empty(t, a.listTasks(bob))

	res := a.do(fasthttp.MethodPut, "/api/tasks/"+task.ID, bob, `{"title":"hacked","completed":true}`)
	require.Equal(t, fasthttp.StatusNotFound, res.status)
	assert.Equal(t, "Task not found", res.message(t))

	res = a.do(fasthttp.MethodDelete, "/api/tasks/"+task.ID, bob, "")
	require.Equal(t, fasthttp.StatusNotFound, res.status)
	assert.Equal(t, "Task not found", res.message(t))

	tasks := a.listTasks(ann)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.False(t, tasks[0].Completed)
}

func TestTasks_OwnerComesFromToken(t *testing.T) {
	a := newApp(t)
	require.Equal(t, fasthttp.StatusCreated, a.register("Ann", "ann@x.com", "pw1").status)
	tok := a.login("ann@x.com", "pw1")

	res := a.do(fasthttp.MethodPost, "/api/tasks", tok, `{"title":"x","user":"someone-else"}`)
	require.Equal(t, fasthttp.StatusCreated, res.status)
	var task taskJSON
	res.decode(t, &task)
	assert.NotEqual(t, "someone-else", task.User)

	res = a.do(fasthttp.MethodGet, "/api/users/profile", tok, "")
	var profile struct {
		ID string `json:"_id"`
	}
	res.decode(t, &profile)
	assert.Equal(t, profile.ID, task.User)
}

func TestTasks_Validation(t *testing.T) {
	a := newApp(t)
	require.Equal(t, fasthttp.StatusCreated, a.register("Ann", "ann@x.com", "pw1").status)
	tok := a.login("ann@x.com", "pw1")

	res := a.do(fasthttp.MethodPost, "/api/tasks", tok, `{"title":""}`)
	require.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "Task title is required", res.message(t))

	res = a.do(fasthttp.MethodPost, "/api/tasks", tok, `{not json`)
	require.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid request body", res.message(t))

	task := a.createTask(tok, "Buy milk")
	res = a.do(fasthttp.MethodPut, "/api/tasks/"+task.ID, tok, `{"title":"  "}`)
	require.Equal(t, fasthttp.StatusBadRequest, res.status)

	res = a.do(fasthttp.MethodPut, "/api/tasks/"+task.ID, tok, `{"title":"Buy oat milk"}`)
	require.Equal(t, fasthttp.StatusOK, res.status)
	var updated taskJSON
	res.decode(t, &updated)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.False(t, updated.Completed)

	res = a.do(fasthttp.MethodDelete, "/api/tasks/missing", tok, "")
	require.Equal(t, fasthttp.StatusNotFound, res.status)
}

func TestTasks_ConcurrentUpdatesLastWriteWins(t *testing.T) {
	a := newApp(t)
	require.Equal(t, fasthttp.StatusCreated, a.register("Ann", "ann@x.com", "pw1").status)
	tok := a.login("ann@x.com", "pw1")
	task := a.createTask(tok, "Buy milk")

	var wg sync.WaitGroup
	for _, done := range []bool{true, false} {
		wg.Add(1)
		go func(done bool) {
			defer wg.Done()
			res := a.do(fasthttp.MethodPut, "/api/tasks/"+task.ID, tok, fmt.Sprintf(`{"completed":%t}`, done))
			assert.Equal(t, fasthttp.StatusOK, res.status)
		}(done)
	}
	wg.Wait()

	tasks := a.listTasks(tok)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
}

func TestRegisterAndLogin_Failures(t *testing.T) {
	a := newApp(t)

	res := a.register("", "ann@x.com", "pw1")
	require.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "All fields are required", res.message(t))

	require.Equal(t, fasthttp.StatusCreated, a.register("Ann", "ann@x.com", "pw1").status)

	res = a.register("Ann2", "ANN@X.COM", "pw2")
	require.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "User already exists", res.message(t))

	res = a.do(fasthttp.MethodPost, "/api/auth/login", "", `{"email":"ann@x.com","password":"wrong"}`)
	require.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid credentials", res.message(t))

	res = a.do(fasthttp.MethodPost, "/api/auth/login", "", `{"email":"nobody@x.com","password":"pw1"}`)
	require.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "User does not exist", res.message(t))

	res = a.do(fasthttp.MethodPost, "/api/auth/login", "", `{"email":"ann@x.com"}`)
	require.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "All fields are required", res.message(t))

	// the first registration's password still works
	a.login("Ann@x.com", "pw1")
}

func TestProtectedRoutes_RejectBadTokens(t *testing.T) {
	a := newApp(t)
	require.Equal(t, fasthttp.StatusCreated, a.register("Ann", "ann@x.com", "pw1").status)
	tok := a.login("ann@x.com", "pw1")

	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	flipped := strings.Join([]string{parts[0], parts[1], string(sig)}, ".")

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		UserID: "someone",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		UserID: "someone",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	routes := []struct{ method, path, body string }{
		{fasthttp.MethodGet, "/api/tasks", ""},
		{fasthttp.MethodPost, "/api/tasks", `{"title":"x"}`},
		{fasthttp.MethodPut, "/api/tasks/abc", `{"completed":true}`},
		{fasthttp.MethodDelete, "/api/tasks/abc", ""},
		{fasthttp.MethodGet, "/api/users/profile", ""},
		{fasthttp.MethodPut, "/api/users/profile", `{"name":"x"}`},
	}
	for _, route := range routes {
		for _, bearer := range []string{"", flipped, expired, forged} {
			res := a.do(route.method, route.path, bearer, route.body)
			require.Equal(t, fasthttp.StatusUnauthorized, res.status, route.path)
			assert.Equal(t, "Not authorized", res.message(t))
		}
	}
}

func TestProfile(t *testing.T) {
	a := newApp(t)
	require.Equal(t, fasthttp.StatusCreated, a.register("Ann", "Ann@X.com", "pw1").status)
	tok := a.login("ann@x.com", "pw1")

	res := a.do(fasthttp.MethodGet, "/api/users/profile", tok, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	assert.NotContains(t, string(res.body), "password")
	var profile map[string]interface{}
	res.decode(t, &profile)
	assert.Equal(t, "Ann", profile["name"])
	assert.Equal(t, "ann@x.com", profile["email"])

	res = a.do(fasthttp.MethodPut, "/api/users/profile", tok, `{"name":""}`)
	require.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "Name required", res.message(t))

	res = a.do(fasthttp.MethodPut, "/api/users/profile", tok, `{"name":"Annie","email":"evil@x.com"}`)
	require.Equal(t, fasthttp.StatusOK, res.status)
	res.decode(t, &profile)
	assert.Equal(t, "Annie", profile["name"])
	assert.Equal(t, "ann@x.com", profile["email"])
	assert.NotContains(t, string(res.body), "password")
}

func TestProfile_DeletedUserIsNotFound(t *testing.T) {
	a := newApp(t)
	tokens, err := token.NewService(testSecret)
	require.NoError(t, err)
	ghost, _, err := tokens.Issue("ghost-user")
	require.NoError(t, err)

	res := a.do(fasthttp.MethodGet, "/api/users/profile", ghost, "")
	require.Equal(t, fasthttp.StatusNotFound, res.status)
	assert.Equal(t, "User not found", res.message(t))
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	res := a.do(fasthttp.MethodGet, "/health", "", "")
	require.Equal(t, fasthttp.StatusOK, res.status)

	var out struct {
		Status   string          `json:"status"`
		Services map[string]bool `json:"services"`
	}
	res.decode(t, &out)
	assert.Equal(t, "ok", out.Status)
	assert.True(t, out.Services["bolt"])
}
