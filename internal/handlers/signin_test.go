package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/arnavmishra07/taskify-backend/internal/config"
	"github.com/arnavmishra07/taskify-backend/internal/database"
	"github.com/arnavmishra07/taskify-backend/internal/services"
	"github.com/arnavmishra07/taskify-backend/pkg/utils"
)

const usersNamespace = "taskify.users"

func signinUserDoc(email, passwordHash string) bson.D {
	now := time.Now()
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
		{Key: "name", Value: "A"},
		{Key: "email", Value: email},
		{Key: "password", Value: passwordHash},
	}
}

// TestSigninEnumerationResistance checks that an unknown email and a wrong
// password produce byte-identical responses, so the API does not reveal
// which accounts exist.
func TestSigninEnumerationResistance(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock).DatabaseName("taskify"))

	hash, err := utils.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	mt.Run("identical error shape", func(mt *mtest.T) {
		database.DB = mt.DB
		initTestHandlers(mt.T)

		// Unknown email: the lookup finds nothing
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNamespace, mtest.FirstBatch))
		unknownRec := postJSON(mt.T, Signin, `{"email":"nobody@x.com","password":"whatever1"}`)

		// Known email, wrong password
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNamespace, mtest.FirstBatch,
			signinUserDoc("a@x.com", hash)))
		wrongRec := postJSON(mt.T, Signin, `{"email":"a@x.com","password":"wrong-password"}`)

		if unknownRec.Code != http.StatusUnauthorized {
			mt.Fatalf("unknown email: expected 401, got %d", unknownRec.Code)
		}
		if wrongRec.Code != http.StatusUnauthorized {
			mt.Fatalf("wrong password: expected 401, got %d", wrongRec.Code)
		}
		if unknownRec.Body.String() != wrongRec.Body.String() {
			mt.Errorf("responses differ:\nunknown email: %s\nwrong password: %s",
				unknownRec.Body.String(), wrongRec.Body.String())
		}
	})

	mt.Run("correct password signs in", func(mt *mtest.T) {
		database.DB = mt.DB
		initTestHandlers(mt.T)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNamespace, mtest.FirstBatch,
			signinUserDoc("a@x.com", hash)))
		rec := postJSON(mt.T, Signin, `{"email":"a@x.com","password":"correct-password"}`)

		if rec.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"token"`) {
			mt.Errorf("expected a token in the response: %s", rec.Body.String())
		}
	})
}

// TestSigninStoreFailureStack checks that an unexpected store error becomes
// a generic 500 whose stack appears only outside production.
func TestSigninStoreFailureStack(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock).DatabaseName("taskify"))

	storeFailure := func(mt *mtest.T) {
		// The find fails; the follow-up error-log insert succeeds
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11601,
				Name:    "Interrupted",
				Message: "operation interrupted",
			}),
			mtest.CreateSuccessResponse(),
		)
	}

	mt.Run("stack exposed outside production", func(mt *mtest.T) {
		database.DB = mt.DB
		Init(&config.Config{Environment: "development"}, services.NewTokenService("test-secret", time.Hour))

		storeFailure(mt)
		rec := postJSON(mt.T, Signin, `{"email":"a@x.com","password":"abcdef"}`)

		if rec.Code != http.StatusInternalServerError {
			mt.Fatalf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"stack"`) {
			mt.Errorf("expected stack in development body: %s", rec.Body.String())
		}
	})

	mt.Run("stack hidden in production", func(mt *mtest.T) {
		database.DB = mt.DB
		Init(&config.Config{Environment: "production"}, services.NewTokenService("test-secret", time.Hour))

		storeFailure(mt)
		rec := postJSON(mt.T, Signin, `{"email":"a@x.com","password":"abcdef"}`)

		if rec.Code != http.StatusInternalServerError {
			mt.Fatalf("expected 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), `"stack"`) {
			mt.Errorf("stack must not be exposed in production: %s", rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Internal Server Error") {
			mt.Errorf("expected generic message: %s", rec.Body.String())
		}
	})
}
