package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"users_backend/internal/feature/users/domain"
	"users_backend/internal/feature/users/domain/entity"
	"users_backend/internal/feature/users/usecase"
	jwtmw "users_backend/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// mockUserUsecase is a hand-rolled mock of the UserUsecase interface.
type mockUserUsecase struct {
	createFunc         func(ctx context.Context, requester usecase.Requester, in usecase.CreateUserInput) (uuid.UUID, error)
	updateInfoFunc     func(ctx context.Context, requester usecase.Requester, target uuid.UUID, in usecase.UpdateInfoInput) error
	updateLoginFunc    func(ctx context.Context, requester usecase.Requester, target uuid.UUID, newLogin string) error
	updatePasswordFunc func(ctx context.Context, requester usecase.Requester, target uuid.UUID, password string) error
	reactivateFunc     func(ctx context.Context, requester usecase.Requester, target uuid.UUID) error
	deleteFunc         func(ctx context.Context, requester usecase.Requester, target uuid.UUID, isSoft bool) error
	readCurrentFunc    func(ctx context.Context, requester usecase.Requester) (*usecase.UserDetailedView, error)
	readByLoginFunc    func(ctx context.Context, requester usecase.Requester, login string) (*usecase.UserView, error)
	readByGuidFunc     func(ctx context.Context, requester usecase.Requester, target uuid.UUID) (*usecase.UserFullView, error)
	listActiveFunc     func(ctx context.Context, requester usecase.Requester) ([]*usecase.UserDetailedView, error)
	listElderThanFunc  func(ctx context.Context, requester usecase.Requester, age int) ([]*usecase.UserFullView, error)
}

func (m *mockUserUsecase) Create(ctx context.Context, requester usecase.Requester, in usecase.CreateUserInput) (uuid.UUID, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, requester, in)
	}
	return uuid.New(), nil
}

func (m *mockUserUsecase) UpdateInfo(ctx context.Context, requester usecase.Requester, target uuid.UUID, in usecase.UpdateInfoInput) error {
	if m.updateInfoFunc != nil {
		return m.updateInfoFunc(ctx, requester, target, in)
	}
	return nil
}

func (m *mockUserUsecase) UpdateLogin(ctx context.Context, requester usecase.Requester, target uuid.UUID, newLogin string) error {
	if m.updateLoginFunc != nil {
		return m.updateLoginFunc(ctx, requester, target, newLogin)
	}
	return nil
}

func (m *mockUserUsecase) UpdatePassword(ctx context.Context, requester usecase.Requester, target uuid.UUID, password string) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, requester, target, password)
	}
	return nil
}

func (m *mockUserUsecase) Reactivate(ctx context.Context, requester usecase.Requester, target uuid.UUID) error {
	if m.reactivateFunc != nil {
		return m.reactivateFunc(ctx, requester, target)
	}
	return nil
}

func (m *mockUserUsecase) Delete(ctx context.Context, requester usecase.Requester, target uuid.UUID, isSoft bool) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, requester, target, isSoft)
	}
	return nil
}

func (m *mockUserUsecase) ReadCurrent(ctx context.Context, requester usecase.Requester) (*usecase.UserDetailedView, error) {
	if m.readCurrentFunc != nil {
		return m.readCurrentFunc(ctx, requester)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserUsecase) ReadByLogin(ctx context.Context, requester usecase.Requester, login string) (*usecase.UserView, error) {
	if m.readByLoginFunc != nil {
		return m.readByLoginFunc(ctx, requester, login)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserUsecase) ReadByGuid(ctx context.Context, requester usecase.Requester, target uuid.UUID) (*usecase.UserFullView, error) {
	if m.readByGuidFunc != nil {
		return m.readByGuidFunc(ctx, requester, target)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserUsecase) ListActive(ctx context.Context, requester usecase.Requester) ([]*usecase.UserDetailedView, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx, requester)
	}
	return nil, nil
}

func (m *mockUserUsecase) ListElderThan(ctx context.Context, requester usecase.Requester, age int) ([]*usecase.UserFullView, error) {
	if m.listElderThanFunc != nil {
		return m.listElderThanFunc(ctx, requester, age)
	}
	return nil, nil
}

var (
	testRequesterGuid = uuid.New()
	testTargetGuid    = uuid.New()
)

// asUser mimics the auth middleware by seeding the requester identity.
func asUser(guid uuid.UUID, login string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(jwtmw.ContextUserGuid, guid)
		c.Set(jwtmw.ContextUserLogin, login)
		c.Next()
	}
}

// newUserRouter mounts all user routes behind the identity stub.
func newUserRouter(uc UserUsecase, identity gin.HandlerFunc) *gin.Engine {
	h := NewUserHandler(uc)
	r := gin.New()
	g := r.Group("/users")
	if identity != nil {
		g.Use(identity)
	}
	g.POST("", h.Create)
	g.GET("", h.ListActive)
	g.GET("/me", h.ReadCurrent)
	g.PATCH("/me/info", h.UpdateCurrentInfo)
	g.PATCH("/me/login", h.UpdateCurrentLogin)
	g.PATCH("/me/password", h.UpdateCurrentPassword)
	g.GET("/by-login/:login", h.ReadByLogin)
	g.GET("/elder-than/:age", h.ListElderThan)
	g.GET("/by-guid/:guid", h.ReadByGuid)
	g.PATCH("/by-guid/:guid/info", h.UpdateInfo)
	g.PATCH("/by-guid/:guid/login", h.UpdateLogin)
	g.PATCH("/by-guid/:guid/password", h.UpdatePassword)
	g.PATCH("/by-guid/:guid/activate", h.Reactivate)
	g.DELETE("/by-guid/:guid", h.Delete)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Create(t *testing.T) {
	t.Run("valid request returns 201 with the new guid", func(t *testing.T) {
		created := uuid.New()
		uc := &mockUserUsecase{
			createFunc: func(ctx context.Context, requester usecase.Requester, in usecase.CreateUserInput) (uuid.UUID, error) {
				assert.Equal(t, "Admin", requester.Login)
				assert.Equal(t, "alice", in.Login)
				assert.Equal(t, entity.GenderFemale, in.Gender)
				assert.True(t, in.Admin == false)
				return created, nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodPost, "/users",
			`{"login":"alice","password":"secret1","name":"Alice","gender":1}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"guid":"`+created.String()+`"}`, w.Body.String())
	})

	t.Run("non-admin requester gets 403", func(t *testing.T) {
		uc := &mockUserUsecase{
			createFunc: func(ctx context.Context, requester usecase.Requester, in usecase.CreateUserInput) (uuid.UUID, error) {
				return uuid.Nil, domain.ErrOnlyAdmins
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "bob"))

		w := doJSON(r, http.MethodPost, "/users",
			`{"login":"alice","password":"secret1","name":"Alice","gender":0}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("duplicate login gets 400", func(t *testing.T) {
		uc := &mockUserUsecase{
			createFunc: func(ctx context.Context, requester usecase.Requester, in usecase.CreateUserInput) (uuid.UUID, error) {
				return uuid.Nil, domain.ErrNotUniqueLogin
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodPost, "/users",
			`{"login":"alice","password":"secret1","name":"Alice","gender":0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-alphanumeric login fails validation", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{}, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodPost, "/users",
			`{"login":"a lice","password":"secret1","name":"Alice","gender":0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("gender out of range fails validation", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{}, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodPost, "/users",
			`{"login":"alice","password":"secret1","name":"Alice","gender":7}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing identity is 401", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{}, nil)

		w := doJSON(r, http.MethodPost, "/users",
			`{"login":"alice","password":"secret1","name":"Alice","gender":0}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserHandler_Updates(t *testing.T) {
	t.Run("self info update targets the requester", func(t *testing.T) {
		var gotTarget uuid.UUID
		var gotIn usecase.UpdateInfoInput
		uc := &mockUserUsecase{
			updateInfoFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID, in usecase.UpdateInfoInput) error {
				gotTarget, gotIn = target, in
				return nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "alice"))

		w := doJSON(r, http.MethodPatch, "/users/me/info", `{"name":"Alice Cooper"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testRequesterGuid, gotTarget)
		if assert.NotNil(t, gotIn.Name) {
			assert.Equal(t, "Alice Cooper", *gotIn.Name)
		}
		assert.Nil(t, gotIn.Gender, "omitted fields must stay nil")
		assert.Nil(t, gotIn.Birthday, "omitted fields must stay nil")
	})

	t.Run("explicit zero gender is carried as a set value", func(t *testing.T) {
		var gotIn usecase.UpdateInfoInput
		uc := &mockUserUsecase{
			updateInfoFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID, in usecase.UpdateInfoInput) error {
				gotIn = in
				return nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "alice"))

		w := doJSON(r, http.MethodPatch, "/users/me/info", `{"gender":0}`)

		assert.Equal(t, http.StatusOK, w.Code)
		if assert.NotNil(t, gotIn.Gender) {
			assert.Equal(t, entity.GenderUnknown, *gotIn.Gender)
		}
	})

	t.Run("admin info update targets the path guid", func(t *testing.T) {
		var gotTarget uuid.UUID
		uc := &mockUserUsecase{
			updateInfoFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID, in usecase.UpdateInfoInput) error {
				gotTarget = target
				return nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodPatch, "/users/by-guid/"+testTargetGuid.String()+"/info", `{"name":"Bob"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testTargetGuid, gotTarget)
	})

	t.Run("stranger update gets 403", func(t *testing.T) {
		uc := &mockUserUsecase{
			updateInfoFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID, in usecase.UpdateInfoInput) error {
				return domain.ErrOnlyAdmins
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "bob"))

		w := doJSON(r, http.MethodPatch, "/users/by-guid/"+testTargetGuid.String()+"/info", `{"name":"x"}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("malformed target guid gets 400", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{}, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodPatch, "/users/by-guid/not-a-guid/info", `{"name":"x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login update passes the new login", func(t *testing.T) {
		var gotLogin string
		uc := &mockUserUsecase{
			updateLoginFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID, newLogin string) error {
				gotLogin = newLogin
				return nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "alice"))

		w := doJSON(r, http.MethodPatch, "/users/me/login", `{"login":"alice2"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice2", gotLogin)
	})

	t.Run("login update collision gets 400", func(t *testing.T) {
		uc := &mockUserUsecase{
			updateLoginFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID, newLogin string) error {
				return domain.ErrNotUniqueLogin
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "alice"))

		w := doJSON(r, http.MethodPatch, "/users/me/login", `{"login":"taken"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("password update passes the plaintext to the usecase", func(t *testing.T) {
		var gotPassword string
		uc := &mockUserUsecase{
			updatePasswordFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID, password string) error {
				gotPassword = password
				return nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "alice"))

		w := doJSON(r, http.MethodPatch, "/users/me/password", `{"password":"newsecret1"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "newsecret1", gotPassword)
	})
}

func TestUserHandler_DeleteAndReactivate(t *testing.T) {
	t.Run("soft flag reaches the usecase", func(t *testing.T) {
		var gotSoft bool
		uc := &mockUserUsecase{
			deleteFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID, isSoft bool) error {
				gotSoft = isSoft
				return nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodDelete, "/users/by-guid/"+testTargetGuid.String(), `{"soft":true}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, gotSoft)
	})

	t.Run("hard delete of a missing user gets 404", func(t *testing.T) {
		uc := &mockUserUsecase{
			deleteFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID, isSoft bool) error {
				return domain.ErrUserNotFound
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodDelete, "/users/by-guid/"+testTargetGuid.String(), `{"soft":false}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reactivate forwards the target", func(t *testing.T) {
		var gotTarget uuid.UUID
		uc := &mockUserUsecase{
			reactivateFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID) error {
				gotTarget = target
				return nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodPatch, "/users/by-guid/"+testTargetGuid.String()+"/activate", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testTargetGuid, gotTarget)
	})

	t.Run("reactivate by non-admin gets 403", func(t *testing.T) {
		uc := &mockUserUsecase{
			reactivateFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID) error {
				return domain.ErrOnlyAdmins
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "bob"))

		w := doJSON(r, http.MethodPatch, "/users/by-guid/"+testTargetGuid.String()+"/activate", "")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUserHandler_Reads(t *testing.T) {
	now := time.Now().UTC()

	t.Run("current user sees their own record", func(t *testing.T) {
		uc := &mockUserUsecase{
			readCurrentFunc: func(ctx context.Context, requester usecase.Requester) (*usecase.UserDetailedView, error) {
				return &usecase.UserDetailedView{
					Guid:      requester.Guid,
					Login:     requester.Login,
					Name:      "Alice",
					Gender:    entity.GenderFemale,
					CreatedOn: now,
					IsActive:  true,
				}, nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "alice"))

		w := doJSON(r, http.MethodGet, "/users/me", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), testRequesterGuid.String())
		assert.Contains(t, w.Body.String(), `"login":"alice"`)
		assert.NotContains(t, w.Body.String(), "password", "digest must never leave the server")
	})

	t.Run("read by login returns the short projection", func(t *testing.T) {
		uc := &mockUserUsecase{
			readByLoginFunc: func(ctx context.Context, requester usecase.Requester, login string) (*usecase.UserView, error) {
				assert.Equal(t, "bob", login)
				return &usecase.UserView{Name: "Bob", Gender: entity.GenderMale, IsActive: true}, nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodGet, "/users/by-login/bob", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Bob"`)
		assert.NotContains(t, w.Body.String(), `"login"`, "short projection carries no identifiers")
		assert.NotContains(t, w.Body.String(), `"guid"`)
	})

	t.Run("read by guid returns the full projection", func(t *testing.T) {
		revokedBy := "Admin"
		uc := &mockUserUsecase{
			readByGuidFunc: func(ctx context.Context, requester usecase.Requester, target uuid.UUID) (*usecase.UserFullView, error) {
				return &usecase.UserFullView{
					Guid:      target,
					Login:     "bob",
					Name:      "Bob",
					CreatedOn: now,
					CreatedBy: "Admin",
					RevokedOn: &now,
					RevokedBy: &revokedBy,
				}, nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodGet, "/users/by-guid/"+testTargetGuid.String(), "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"revoked_by":"Admin"`)
	})

	t.Run("active list by non-admin gets 403", func(t *testing.T) {
		uc := &mockUserUsecase{
			listActiveFunc: func(ctx context.Context, requester usecase.Requester) ([]*usecase.UserDetailedView, error) {
				return nil, domain.ErrOnlyAdmins
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "bob"))

		w := doJSON(r, http.MethodGet, "/users", "")

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("elder-than forwards the parsed age", func(t *testing.T) {
		var gotAge int
		uc := &mockUserUsecase{
			listElderThanFunc: func(ctx context.Context, requester usecase.Requester, age int) ([]*usecase.UserFullView, error) {
				gotAge = age
				return []*usecase.UserFullView{}, nil
			},
		}
		r := newUserRouter(uc, asUser(testRequesterGuid, "Admin"))

		w := doJSON(r, http.MethodGet, "/users/elder-than/18", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 18, gotAge)
	})

	t.Run("non-numeric and out-of-range ages get 400", func(t *testing.T) {
		r := newUserRouter(&mockUserUsecase{}, asUser(testRequesterGuid, "Admin"))

		for _, age := range []string{"abc", "0", "-3", "200"} {
			w := doJSON(r, http.MethodGet, "/users/elder-than/"+age, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, "age %q must be rejected", age)
		}
	})
}
