package services

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/arnavmishra07/taskify-backend/internal/database"
	"github.com/arnavmishra07/taskify-backend/pkg/utils"
)

const usersNamespace = "taskify.users"

func userDoc(id primitive.ObjectID, email, passwordHash string) bson.D {
	now := time.Now()
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
		{Key: "name", Value: "A"},
		{Key: "email", Value: email},
		{Key: "password", Value: passwordHash},
	}
}

func newUserServiceTest(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock).DatabaseName("taskify"))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	mt := newUserServiceTest(t)

	mt.Run("conflict regardless of password", func(mt *mtest.T) {
		database.DB = mt.DB

		existing := userDoc(primitive.NewObjectID(), "a@x.com", "irrelevant")
		for _, password := range []string{"abcdef", "completely-different"} {
			mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNamespace, mtest.FirstBatch, existing))

			_, err := CreateUser(context.Background(), "A", "a@x.com", password)
			if !errors.Is(err, ErrEmailTaken) {
				mt.Fatalf("password %q: expected ErrEmailTaken, got %v", password, err)
			}
		}
	})

	mt.Run("unique index race maps to conflict", func(mt *mtest.T) {
		database.DB = mt.DB

		// Pre-check misses, the insert hits the unique email index
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, usersNamespace, mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}),
		)

		_, err := CreateUser(context.Background(), "A", "a@x.com", "abcdef")
		if !errors.Is(err, ErrEmailTaken) {
			mt.Fatalf("expected ErrEmailTaken from duplicate key error, got %v", err)
		}
	})
}

func TestBeginPasswordResetUnknownEmail(t *testing.T) {
	mt := newUserServiceTest(t)

	mt.Run("no mutation, no token", func(mt *mtest.T) {
		database.DB = mt.DB

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		token, ok, err := BeginPasswordReset(context.Background(), "nobody@x.com")
		if err != nil {
			mt.Fatalf("BeginPasswordReset error: %v", err)
		}
		if ok {
			mt.Error("expected ok=false for unknown email")
		}
		if token != "" {
			mt.Error("expected no token for unknown email")
		}
	})
}

func TestBeginPasswordResetSetsBothFields(t *testing.T) {
	mt := newUserServiceTest(t)

	mt.Run("token and expiry written together", func(mt *mtest.T) {
		database.DB = mt.DB

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		token, ok, err := BeginPasswordReset(context.Background(), "a@x.com")
		if err != nil {
			mt.Fatalf("BeginPasswordReset error: %v", err)
		}
		if !ok {
			mt.Fatal("expected ok=true for known email")
		}
		if len(token) != ResetTokenBytes*2 {
			mt.Errorf("expected %d-char hex token, got %d chars", ResetTokenBytes*2, len(token))
		}
		if _, err := hex.DecodeString(token); err != nil {
			mt.Errorf("token is not hex: %v", err)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "update" {
			mt.Fatalf("expected an update command, got %+v", evt)
		}
		set := evt.Command.Lookup("updates", "0", "u", "$set")
		if set.Validate() != nil {
			mt.Fatal("update command carries no $set")
		}
		if got := set.Document().Lookup("reset_password_token").StringValue(); got != token {
			mt.Errorf("persisted token %q does not match returned token %q", got, token)
		}
		if set.Document().Lookup("reset_password_expires").Validate() != nil {
			mt.Error("expiry must be written in the same update as the token")
		}
	})
}

func TestCompletePasswordResetInvalidToken(t *testing.T) {
	mt := newUserServiceTest(t)

	// The mock answers with no matching document; the service must report
	// the same ErrResetTokenInvalid whether the token never existed or
	// exists but is past its expiry (the filter excludes both alike).
	cases := []string{"unknown token", "expired token"}
	for _, name := range cases {
		mt.Run(name, func(mt *mtest.T) {
			database.DB = mt.DB

			mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

			err := CompletePasswordReset(context.Background(), "deadbeef", "newpass1")
			if !errors.Is(err, ErrResetTokenInvalid) {
				mt.Fatalf("expected ErrResetTokenInvalid, got %v", err)
			}

			evt := mt.GetStartedEvent()
			if evt == nil || evt.CommandName != "findAndModify" {
				mt.Fatalf("expected a findAndModify command, got %+v", evt)
			}
			if evt.Command.Lookup("query", "reset_password_expires", "$gt").Validate() != nil {
				mt.Error("lookup must require a future expiry so stale tokens cannot match")
			}
		})
	}
}

func TestCompletePasswordResetConsumesToken(t *testing.T) {
	mt := newUserServiceTest(t)

	mt.Run("password replaced and reset fields cleared atomically", func(mt *mtest.T) {
		database.DB = mt.DB

		doc := userDoc(primitive.NewObjectID(), "a@x.com", "old-hash")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		token := "aaaabbbbccccddddaaaabbbbccccdddd"
		if err := CompletePasswordReset(context.Background(), token, "newpass1"); err != nil {
			mt.Fatalf("CompletePasswordReset error: %v", err)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "findAndModify" {
			mt.Fatalf("expected a findAndModify command, got %+v", evt)
		}
		cmd := evt.Command

		if got := cmd.Lookup("query", "reset_password_token").StringValue(); got != token {
			mt.Errorf("filter token %q, want %q", got, token)
		}

		update := cmd.Lookup("update").Document()

		// The stored hash must accept the new password and reject the old one
		storedHash := update.Lookup("$set", "password").StringValue()
		if ok, err := utils.VerifyPassword("newpass1", storedHash); err != nil || !ok {
			mt.Errorf("stored hash does not verify the new password (ok=%v err=%v)", ok, err)
		}
		if ok, _ := utils.VerifyPassword("oldpass1", storedHash); ok {
			mt.Error("stored hash must not verify the old password")
		}

		// Both reset fields are cleared in the same document update as the
		// password write, so the consumed token has no window of validity
		unset := cmd.Lookup("update", "$unset")
		if unset.Validate() != nil {
			mt.Fatal("update carries no $unset")
		}
		if unset.Document().Lookup("reset_password_token").Validate() != nil {
			mt.Error("reset_password_token must be cleared with the password write")
		}
		if unset.Document().Lookup("reset_password_expires").Validate() != nil {
			mt.Error("reset_password_expires must be cleared with the password write")
		}
	})
}
