package nfccard

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"cardgate/internal/nfccard/store"
	dErrors "cardgate/pkg/domain-errors"
)

// fakeAdapter scripts a card: writes land in files, failures are injected
// per call type.
type fakeAdapter struct {
	authErr   error
	authCalls int

	writeErrs  map[FileID]error
	writeCalls int
	files      map[FileID][]byte

	readErr error

	ndefMessages [][]byte
	ndefErr      error
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		writeErrs: make(map[FileID]error),
		files:     make(map[FileID][]byte),
	}
}

func (a *fakeAdapter) Authenticate(_ context.Context, _ string) error {
	a.authCalls++
	return a.authErr
}

func (a *fakeAdapter) ReadFile(_ context.Context, file FileID) ([]byte, error) {
	if a.readErr != nil {
		return nil, a.readErr
	}
	return a.files[file], nil
}

func (a *fakeAdapter) WriteFile(_ context.Context, file FileID, data []byte) error {
	a.writeCalls++
	if err := a.writeErrs[file]; err != nil {
		return err
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	a.files[file] = stored
	return nil
}

func (a *fakeAdapter) CardUID(_ context.Context) (string, error) { return "04AABBCCDDEE80", nil }

func (a *fakeAdapter) WriteNDEF(_ context.Context, message []byte) error {
	if a.ndefErr != nil {
		return a.ndefErr
	}
	a.ndefMessages = append(a.ndefMessages, message)
	return nil
}

const (
	testCardUID  = "04AABBCCDDEE80"
	testUserDUID = "duid-user-1"
	testHMACKey  = "deployment-file01-hmac-key"
	testShareID  = "2f1b9a0c-58e3-4a41-9c7e-0d5b7c3f8e21"
)

type ManagerSuite struct {
	suite.Suite
	adapter *fakeAdapter
	store   *store.InMemoryBoltcardStore
	manager *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.adapter = newFakeAdapter()
	s.store = store.NewInMemoryBoltcardStore()
	s.manager = NewManager(ManagerConfig{
		Adapter:       s.adapter,
		Store:         s.store,
		File01HMACKey: testHMACKey,
	})
}

func (s *ManagerSuite) paymentRequest() ProgramRequest {
	return ProgramRequest{
		CardUID:    testCardUID,
		Functions:  []Function{FunctionPayment},
		PIN:        "1234",
		BoltcardID: "bc1",
	}
}

func (s *ManagerSuite) TestProgramCard() {
	ctx := context.Background()

	s.Run("single payment function succeeds", func() {
		result := s.manager.ProgramCard(ctx, s.paymentRequest())

		s.True(result.Success)
		s.Empty(result.ErrorCode)
		s.Equal([]Function{FunctionPayment}, result.ProgrammedFunctions)
		s.Equal([]Function{FunctionPayment}, result.VerifiedFunctions)
		s.Equal(1, s.adapter.authCalls)
	})

	s.Run("payment file carries reference and truncated hmac", func() {
		s.manager.ProgramCard(ctx, s.paymentRequest())

		data := s.adapter.files[FilePayment]
		s.Require().Len(data, FileSize)

		refSum := sha256.Sum256([]byte("bc1"))
		s.Equal(refSum[:16], data[:16])

		mac := hmac.New(sha256.New, []byte(testHMACKey))
		mac.Write(refSum[:16])
		s.Equal(mac.Sum(nil)[:16], data[16:32])
	})

	s.Run("pin auth failure writes nothing", func() {
		s.SetupTest()
		s.adapter.authErr = errors.New("pin rejected")

		result := s.manager.ProgramCard(ctx, s.paymentRequest())

		s.False(result.Success)
		s.Equal(CodePINAuthFailed, result.ErrorCode)
		s.Empty(result.ProgrammedFunctions)
		s.Zero(s.adapter.writeCalls)
	})

	s.Run("short pin rejected before any adapter call", func() {
		s.SetupTest()
		req := s.paymentRequest()
		req.PIN = "12"

		result := s.manager.ProgramCard(ctx, req)

		s.False(result.Success)
		s.Equal(CodeInvalidPINFormat, result.ErrorCode)
		s.Zero(s.adapter.authCalls)
		s.Zero(s.adapter.writeCalls)
	})

	s.Run("non-numeric pin rejected", func() {
		s.SetupTest()
		req := s.paymentRequest()
		req.PIN = "12ab56"

		result := s.manager.ProgramCard(ctx, req)
		s.Equal(CodeInvalidPINFormat, result.ErrorCode)
	})

	s.Run("missing prerequisites reported per function", func() {
		s.SetupTest()
		cases := []struct {
			fn   Function
			code string
		}{
			{FunctionPayment, CodeMissingBoltcardID},
			{FunctionAuth, CodeMissingAuthKeyHash},
			{FunctionSigning, CodeMissingFrostShareID},
		}
		for _, tc := range cases {
			result := s.manager.ProgramCard(ctx, ProgramRequest{
				CardUID:   testCardUID,
				Functions: []Function{tc.fn},
				PIN:       "1234",
			})
			s.Equal(tc.code, result.ErrorCode)
			s.Zero(s.adapter.authCalls)
		}
	})

	s.Run("unknown function rejected", func() {
		s.SetupTest()
		result := s.manager.ProgramCard(ctx, ProgramRequest{
			CardUID:   testCardUID,
			Functions: []Function{"teleport"},
			PIN:       "1234",
		})
		s.Equal(CodeUnsupportedFunction, result.ErrorCode)
	})

	s.Run("write failure halts with partial progress", func() {
		s.SetupTest()
		s.adapter.writeErrs[FileAuth] = errors.New("card pulled from field")

		result := s.manager.ProgramCard(ctx, ProgramRequest{
			CardUID:      testCardUID,
			Functions:    []Function{FunctionPayment, FunctionAuth, FunctionSigning},
			PIN:          "123456",
			BoltcardID:   "bc1",
			AuthKeyHash:  "authhash",
			FrostShareID: testShareID,
		})

		s.False(result.Success)
		s.Equal("FILE_02_WRITE_FAILED", result.ErrorCode)
		s.Equal([]Function{FunctionPayment}, result.ProgrammedFunctions)
		// The signing file was never attempted.
		s.NotContains(s.adapter.files, FileSigning)
	})

	s.Run("signing file holds share uuid and nonzero nonce", func() {
		s.SetupTest()
		result := s.manager.ProgramCard(ctx, ProgramRequest{
			CardUID:      testCardUID,
			Functions:    []Function{FunctionSigning},
			PIN:          "1234",
			FrostShareID: testShareID,
		})
		s.Require().True(result.Success)

		data := s.adapter.files[FileSigning]
		s.Require().Len(data, FileSize)

		shareUUID := uuid.MustParse(testShareID)
		s.Equal(shareUUID[:], data[:16])
		s.False(isAllZero(data[16:32]))
	})

	s.Run("auth file binds key hash to card uid", func() {
		s.SetupTest()
		result := s.manager.ProgramCard(ctx, ProgramRequest{
			CardUID:     testCardUID,
			Functions:   []Function{FunctionAuth},
			PIN:         "1234",
			AuthKeyHash: "authhash",
		})
		s.Require().True(result.Success)

		expected := sha256.Sum256([]byte("authhash" + testCardUID))
		s.Equal(expected[:], s.adapter.files[FileAuth])
	})

	s.Run("malformed frost share id stops before the write", func() {
		s.SetupTest()
		result := s.manager.ProgramCard(ctx, ProgramRequest{
			CardUID:      testCardUID,
			Functions:    []Function{FunctionSigning},
			PIN:          "1234",
			FrostShareID: "not-a-uuid",
		})
		s.False(result.Success)
		s.Equal("FILE_03_PAYLOAD_INVALID", result.ErrorCode)
		s.Zero(s.adapter.writeCalls)
	})
}

func (s *ManagerSuite) TestNostrMetadata() {
	ctx := context.Background()

	s.Run("nip05 written and mirrored to ndef", func() {
		req := s.paymentRequest()
		req.NIP05 = "alice@sat.fam"

		result := s.manager.ProgramCard(ctx, req)
		s.Require().True(result.Success)

		data := s.adapter.files[FileNostr]
		s.Require().Len(data, FileSize)
		s.Equal([]byte("alice@sat.fam"), data[:len("alice@sat.fam")])
		s.True(isAllZero(data[nip05MaxLen:]))

		s.Require().Len(s.adapter.ndefMessages, 1)
		s.Contains(string(s.adapter.ndefMessages[0]), "alice@sat.fam")
	})

	s.Run("29 byte nip05 rejected before any adapter call", func() {
		s.SetupTest()
		req := s.paymentRequest()
		req.NIP05 = "abcdefghijklmnopqrs@sat.fam28"
		s.Require().Len([]byte(req.NIP05), 29)

		result := s.manager.ProgramCard(ctx, req)
		s.False(result.Success)
		s.Equal(CodeNIP05TooLong, result.ErrorCode)
		s.Zero(s.adapter.authCalls)
	})

	s.Run("ndef mirror failure is a warning not an error", func() {
		s.SetupTest()
		s.adapter.ndefErr = errors.New("platform refused ndef write")
		req := s.paymentRequest()
		req.NIP05 = "alice@sat.fam"

		result := s.manager.ProgramCard(ctx, req)
		s.True(result.Success)
		s.NotEmpty(result.Warnings)
	})
}

func (s *ManagerSuite) TestDBSync() {
	ctx := context.Background()

	s.Run("existing record gains unioned functions and shares", func() {
		s.store.Seed(store.BoltcardRecord{
			ID:        "row-1",
			UserDUID:  testUserDUID,
			CardID:    testCardUID,
			Functions: []string{"payment"},
		})

		req := ProgramRequest{
			UserDUID:     testUserDUID,
			CardUID:      testCardUID,
			Functions:    []Function{FunctionPayment, FunctionSigning},
			PIN:          "1234",
			BoltcardID:   "bc1",
			FrostShareID: testShareID,
		}
		result := s.manager.ProgramCard(ctx, req)
		s.Require().True(result.Success)
		s.Empty(result.Warnings)

		record, err := s.store.FindByUserAndCard(ctx, testUserDUID, testCardUID)
		s.Require().NoError(err)
		s.Equal([]string{"payment", "signing"}, record.Functions)
		s.Equal([]string{testShareID}, record.FrostShareIDs)
	})

	s.Run("missing record demotes sync to a warning", func() {
		s.SetupTest()
		req := s.paymentRequest()
		req.UserDUID = "duid-of-nobody"

		result := s.manager.ProgramCard(ctx, req)
		s.True(result.Success)
		s.Require().NotEmpty(result.Warnings)
		s.Contains(result.Warnings[len(result.Warnings)-1], "db sync failed")
	})

	s.Run("direct sync without a store is a configuration error", func() {
		bare := NewManager(ManagerConfig{Adapter: s.adapter})
		err := bare.SyncAfterProgramming(ctx, testUserDUID, testCardUID, nil, nil)
		s.Error(err)
		s.Equal(dErrors.CodeConfiguration, dErrors.CodeOf(err))
	})
}

func (s *ManagerSuite) TestVerifyProgramming() {
	ctx := context.Background()

	s.Run("all-zero file fails verification", func() {
		s.adapter.files[FilePayment] = make([]byte, FileSize)

		result := s.manager.VerifyProgramming(ctx, testCardUID, []Function{FunctionPayment})
		s.False(result.Verified)
		s.NotEmpty(result.Failures)
	})

	s.Run("missing file fails verification", func() {
		s.SetupTest()
		result := s.manager.VerifyProgramming(ctx, testCardUID, []Function{FunctionAuth})
		s.False(result.Verified)
	})

	s.Run("no adapter reports skipped not failed", func() {
		offline := NewManager(ManagerConfig{File01HMACKey: testHMACKey})
		result := offline.VerifyProgramming(ctx, testCardUID, []Function{FunctionPayment})
		s.True(result.Verified)
		s.Contains(result.Note, "skipped")
	})
}

func (s *ManagerSuite) TestDeprovision() {
	ctx := context.Background()

	s.Run("wipes all four files", func() {
		result := s.manager.Deprovision(ctx)
		s.Equal([]int{1, 2, 3, 4}, result.WipedFiles)
		s.Empty(result.Failures)
		for _, file := range allFiles {
			s.True(isAllZero(s.adapter.files[file]))
		}
	})

	s.Run("partial wipe reports only confirmed files", func() {
		s.SetupTest()
		s.adapter.writeErrs[FileSigning] = errors.New("write refused")

		result := s.manager.Deprovision(ctx)
		s.Equal([]int{1, 2, 4}, result.WipedFiles)
		s.Len(result.Failures, 1)
	})
}

func TestPadToFileSize(t *testing.T) {
	t.Run("pads short input with trailing zeros", func(t *testing.T) {
		padded, err := padToFileSize([]byte("ten bytes!"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(padded) != FileSize {
			t.Fatalf("expected %d bytes, got %d", FileSize, len(padded))
		}
		if !bytes.Equal(padded[10:], make([]byte, 22)) {
			t.Fatalf("expected 22 trailing zero bytes")
		}
	})

	t.Run("oversized input is a hard error", func(t *testing.T) {
		_, err := padToFileSize(make([]byte, 40))
		if err == nil {
			t.Fatal("expected error for 40-byte payload")
		}
	})
}
