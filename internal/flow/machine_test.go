package flow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	"github.com/sayu-dev/showcase-bot/internal/domain"
	apperrors "github.com/sayu-dev/showcase-bot/internal/errors"
	"github.com/sayu-dev/showcase-bot/internal/gamedata"
	"github.com/sayu-dev/showcase-bot/internal/repository"
	"github.com/sayu-dev/showcase-bot/internal/session"
)

const (
	testUserID    = int64(1001)
	testChatID    = int64(2002)
	testAccountID = "812345678"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockPrefs struct {
	mock.Mock
}

func (m *mockPrefs) GetLinkedAccount(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockPrefs) SetLinkedAccount(ctx context.Context, userID int64, accountID string) error {
	args := m.Called(ctx, userID, accountID)
	return args.Error(0)
}

func (m *mockPrefs) ClearLinkedAccount(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockPrefs) GetTemplateChoice(ctx context.Context, userID int64, category domain.TemplateCategory) (int, error) {
	args := m.Called(ctx, userID, category)
	return args.Int(0), args.Error(1)
}

func (m *mockPrefs) SetTemplateChoice(ctx context.Context, userID int64, category domain.TemplateCategory, index int) error {
	args := m.Called(ctx, userID, category, index)
	return args.Error(0)
}

func (m *mockPrefs) GetPreferences(ctx context.Context, userID int64) (*domain.UserPreference, error) {
	args := m.Called(ctx, userID)
	prefs, _ := args.Get(0).(*domain.UserPreference)
	return prefs, args.Error(1)
}

type mockPortraits struct {
	mock.Mock
}

func (m *mockPortraits) Get(ctx context.Context, userID int64, entityName string) (*domain.PortraitLink, error) {
	args := m.Called(ctx, userID, entityName)
	link, _ := args.Get(0).(*domain.PortraitLink)
	return link, args.Error(1)
}

func (m *mockPortraits) Set(ctx context.Context, userID int64, entityName, imageURL string) error {
	args := m.Called(ctx, userID, entityName, imageURL)
	return args.Error(0)
}

func (m *mockPortraits) Delete(ctx context.Context, userID int64, entityName string) error {
	args := m.Called(ctx, userID, entityName)
	return args.Error(0)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Roster(ctx context.Context, accountID string) ([]domain.Entity, error) {
	args := m.Called(ctx, accountID)
	roster, _ := args.Get(0).([]domain.Entity)
	return roster, args.Error(1)
}

func (m *mockProvider) Rankings(ctx context.Context, accountID string) (map[string]domain.RankingStat, error) {
	args := m.Called(ctx, accountID)
	rankings, _ := args.Get(0).(map[string]domain.RankingStat)
	return rankings, args.Error(1)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) RenderProfile(ctx context.Context, accountID string, template int) ([]byte, error) {
	args := m.Called(ctx, accountID, template)
	image, _ := args.Get(0).([]byte)
	return image, args.Error(1)
}

func (m *mockRenderer) RenderCard(ctx context.Context, req gamedata.CardRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	image, _ := args.Get(0).([]byte)
	return image, args.Error(1)
}

// fakeTransport records every outgoing interaction so tests can assert on
// message layout without a live chat.
type fakeTransport struct {
	nextRef session.MessageRef

	sentTexts      []string
	editedTexts    []string
	editedCaptions []string
	photoCaptions  []string
	photoMarkups   []*telebot.ReplyMarkup
	captionMarkups []*telebot.ReplyMarkup
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{nextRef: session.MessageRef{ChatID: testChatID, MessageID: 500}}
}

func (t *fakeTransport) SendText(_ context.Context, chatID int64, text string, _ *telebot.ReplyMarkup) (session.MessageRef, error) {
	t.sentTexts = append(t.sentTexts, text)
	return session.MessageRef{ChatID: chatID, MessageID: t.nextRef.MessageID}, nil
}

func (t *fakeTransport) EditText(_ context.Context, _ session.MessageRef, text string, _ *telebot.ReplyMarkup) error {
	t.editedTexts = append(t.editedTexts, text)
	return nil
}

func (t *fakeTransport) EditPhoto(_ context.Context, ref session.MessageRef, _ []byte, caption string, markup *telebot.ReplyMarkup) (session.MessageRef, error) {
	t.photoCaptions = append(t.photoCaptions, caption)
	t.photoMarkups = append(t.photoMarkups, markup)
	return ref, nil
}

func (t *fakeTransport) EditCaption(_ context.Context, _ session.MessageRef, caption string, markup *telebot.ReplyMarkup) error {
	t.editedCaptions = append(t.editedCaptions, caption)
	t.captionMarkups = append(t.captionMarkups, markup)
	return nil
}

func (t *fakeTransport) lastPhotoMarkup() *telebot.ReplyMarkup {
	if len(t.photoMarkups) == 0 {
		return nil
	}
	return t.photoMarkups[len(t.photoMarkups)-1]
}

type machineFixture struct {
	prefs     *mockPrefs
	portraits *mockPortraits
	provider  *mockProvider
	renderer  *mockRenderer
	registry  *session.Registry
	transport *fakeTransport
	machine   *Machine
}

func newMachineFixture() *machineFixture {
	log := testLogger()
	f := &machineFixture{
		prefs:     &mockPrefs{},
		portraits: &mockPortraits{},
		provider:  &mockProvider{},
		renderer:  &mockRenderer{},
		registry:  session.NewRegistry(log),
		transport: newFakeTransport(),
	}

	f.machine = NewMachine(
		f.prefs, f.portraits, f.provider, f.renderer,
		f.registry, f.transport, keyboard.NewBuilder(log), log,
	)

	return f
}

func (f *machineFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.prefs.AssertExpectations(t)
	f.portraits.AssertExpectations(t)
	f.provider.AssertExpectations(t)
	f.renderer.AssertExpectations(t)
}

func roster(n int) []domain.Entity {
	entities := make([]domain.Entity, 0, n)
	for i := 1; i <= n; i++ {
		entities = append(entities, domain.Entity{
			ID:          int64(10000000 + i),
			DisplayName: fmt.Sprintf("Character %d", i),
		})
	}
	return entities
}

func buttonCount(markup *telebot.ReplyMarkup) int {
	if markup == nil {
		return 0
	}

	count := 0
	for _, row := range markup.InlineKeyboard {
		count += len(row)
	}
	return count
}

func TestMachine_LinkAccount_RejectsInvalidIDsBeforeAnyCall(t *testing.T) {
	testCases := []struct {
		name  string
		rawID string
	}{
		{name: "too short", rawID: "1234567"},
		{name: "too long", rawID: "12345678901"},
		{name: "non-digits", rawID: "12345abc9"},
		{name: "empty", rawID: ""},
		{name: "spaces inside", rawID: "1234 5678"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newMachineFixture()

			err := f.machine.LinkAccount(context.Background(), testUserID, testChatID, tc.rawID)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			require.Equal(t, apperrors.CodeValidation, appErr.Code)

			// No placeholder, no collaborator calls, no session.
			require.Empty(t, f.transport.sentTexts)
			require.Zero(t, f.registry.Len())
			f.assertExpectations(t)
		})
	}
}

func TestMachine_LinkAccount_ShowsPreviewWithConfirmRow(t *testing.T) {
	f := newMachineFixture()
	ctx := context.Background()

	f.provider.On("Roster", mock.Anything, testAccountID).Return(roster(3), nil).Once()
	f.prefs.On("GetTemplateChoice", mock.Anything, testUserID, domain.TemplateProfile).Return(1, nil).Once()
	f.renderer.On("RenderProfile", mock.Anything, testAccountID, 1).Return([]byte("png"), nil).Once()

	require.NoError(t, f.machine.LinkAccount(ctx, testUserID, testChatID, testAccountID))

	require.Len(t, f.transport.sentTexts, 1)
	require.Equal(t, 2, buttonCount(f.transport.lastPhotoMarkup()))

	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}
	sess, err := f.registry.Get(ref)
	require.NoError(t, err)
	require.Equal(t, session.KindPendingLinkConfirmation, sess.Kind)
	require.Equal(t, testAccountID, sess.PendingAccountID)
	require.True(t, f.registry.CheckOwner(ref, testUserID))
	require.False(t, f.registry.CheckOwner(ref, testUserID+1))

	f.assertExpectations(t)
}

func TestMachine_LinkAccount_ReplacesEarlierPendingPreview(t *testing.T) {
	f := newMachineFixture()
	ctx := context.Background()

	staleRef := session.MessageRef{ChatID: testChatID, MessageID: 400}
	f.registry.Put(session.FlowSession{
		Ref:              staleRef,
		OwnerID:          testUserID,
		Kind:             session.KindPendingLinkConfirmation,
		PendingAccountID: "911111111",
	})

	f.provider.On("Roster", mock.Anything, testAccountID).Return(roster(1), nil).Once()
	f.prefs.On("GetTemplateChoice", mock.Anything, testUserID, domain.TemplateProfile).Return(2, nil).Once()
	f.renderer.On("RenderProfile", mock.Anything, testAccountID, 2).Return([]byte("png"), nil).Once()

	require.NoError(t, f.machine.LinkAccount(ctx, testUserID, testChatID, testAccountID))

	_, err := f.registry.Get(staleRef)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
	require.Equal(t, 1, f.registry.Len())
}

func TestMachine_LinkAccount_EmptyRosterEndsFlow(t *testing.T) {
	f := newMachineFixture()

	f.provider.On("Roster", mock.Anything, testAccountID).Return([]domain.Entity{}, nil).Once()

	err := f.machine.LinkAccount(context.Background(), testUserID, testChatID, testAccountID)
	require.NoError(t, err)

	// The message is edited into the failure notice and the session ends.
	require.Len(t, f.transport.editedTexts, 1)
	require.Empty(t, f.transport.photoCaptions)
	require.Zero(t, f.registry.Len())
	f.assertExpectations(t)
}

func TestMachine_ConfirmSave_PersistsPendingAccount(t *testing.T) {
	f := newMachineFixture()
	ctx := context.Background()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}

	f.registry.Put(session.FlowSession{
		Ref:              ref,
		OwnerID:          testUserID,
		Kind:             session.KindPendingLinkConfirmation,
		PendingAccountID: testAccountID,
		CurrentAccountID: testAccountID,
	})

	f.prefs.On("SetLinkedAccount", mock.Anything, testUserID, testAccountID).Return(nil).Once()

	require.NoError(t, f.machine.ConfirmSave(ctx, ref, testUserID))
	require.Len(t, f.transport.editedCaptions, 1)
	require.Contains(t, f.transport.editedCaptions[0], testAccountID)
	// The confirmation buttons are removed with the final caption.
	require.Nil(t, f.transport.captionMarkups[0])

	// A second press finds no pending account and writes nothing more.
	err := f.machine.ConfirmSave(ctx, ref, testUserID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeSessionExpired, appErr.Code)

	f.assertExpectations(t)
}

func TestMachine_ConfirmSave_RejectsForeignUser(t *testing.T) {
	f := newMachineFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}

	f.registry.Put(session.FlowSession{
		Ref:              ref,
		OwnerID:          testUserID,
		Kind:             session.KindPendingLinkConfirmation,
		PendingAccountID: testAccountID,
	})

	err := f.machine.ConfirmSave(context.Background(), ref, testUserID+7)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeAuthorization, appErr.Code)

	// The pending state survives untouched for the real owner.
	sess, getErr := f.registry.Get(ref)
	require.NoError(t, getErr)
	require.Equal(t, testAccountID, sess.PendingAccountID)
	f.assertExpectations(t)
}

func TestMachine_ConfirmDiscard_ClearsLinkedAccount(t *testing.T) {
	f := newMachineFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}

	f.registry.Put(session.FlowSession{
		Ref:              ref,
		OwnerID:          testUserID,
		Kind:             session.KindPendingLinkConfirmation,
		PendingAccountID: testAccountID,
	})

	f.prefs.On("ClearLinkedAccount", mock.Anything, testUserID).Return(nil).Once()

	require.NoError(t, f.machine.ConfirmDiscard(context.Background(), ref, testUserID))
	require.Len(t, f.transport.editedCaptions, 1)
	f.assertExpectations(t)
}

func TestMachine_ConfirmSave_AfterRestartSurfacesExpired(t *testing.T) {
	// An empty registry stands in for a restart: the preview message still
	// carries its buttons, but the pending state is gone.
	f := newMachineFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 999}

	err := f.machine.ConfirmSave(context.Background(), ref, testUserID)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeSessionExpired, appErr.Code)

	// The pressed message is edited into the expired notice; nothing is saved.
	require.Len(t, f.transport.editedCaptions, 1)
	require.Contains(t, f.transport.editedCaptions[0], "expired")
	f.assertExpectations(t)
}

func TestMachine_ConfirmDiscard_AfterEvictionSurfacesExpired(t *testing.T) {
	f := newMachineFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}

	f.registry.Put(session.FlowSession{
		Ref:              ref,
		OwnerID:          testUserID,
		Kind:             session.KindPendingLinkConfirmation,
		PendingAccountID: testAccountID,
	})
	f.registry.Forget(ref)

	err := f.machine.ConfirmDiscard(context.Background(), ref, testUserID)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeSessionExpired, appErr.Code)
	require.Len(t, f.transport.editedCaptions, 1)
	f.assertExpectations(t)
}

func TestMachine_ViewProfile_RequiresLinkedAccount(t *testing.T) {
	f := newMachineFixture()

	f.prefs.On("GetLinkedAccount", mock.Anything, testUserID).Return("", repository.ErrNotFound).Once()

	err := f.machine.ViewProfile(context.Background(), testUserID, testChatID)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeNotLinked, appErr.Code)
	require.Empty(t, f.transport.sentTexts)
	f.assertExpectations(t)
}

func TestMachine_ViewProfile_CapsRosterAtTwelveButtons(t *testing.T) {
	f := newMachineFixture()

	f.prefs.On("GetLinkedAccount", mock.Anything, testUserID).Return(testAccountID, nil).Once()
	f.provider.On("Roster", mock.Anything, testAccountID).Return(roster(15), nil).Once()
	// Ranking degradation must not abort the profile render.
	f.provider.On("Rankings", mock.Anything, testAccountID).Return(nil, errors.New("rankings down")).Once()
	f.prefs.On("GetTemplateChoice", mock.Anything, testUserID, domain.TemplateProfile).Return(1, nil).Once()
	f.renderer.On("RenderProfile", mock.Anything, testAccountID, 1).Return([]byte("png"), nil).Once()

	require.NoError(t, f.machine.ViewProfile(context.Background(), testUserID, testChatID))

	markup := f.transport.lastPhotoMarkup()
	require.Equal(t, keyboard.RosterMaxButtons, buttonCount(markup))
	require.Len(t, markup.InlineKeyboard, 3)
	for _, row := range markup.InlineKeyboard {
		require.Len(t, row, keyboard.RosterRowWidth)
	}

	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}
	sess, err := f.registry.Get(ref)
	require.NoError(t, err)
	require.Equal(t, session.KindProfileView, sess.Kind)
	require.Equal(t, testAccountID, sess.CurrentAccountID)
	f.assertExpectations(t)
}

func TestMachine_ViewProfile_EmptyRosterEndsFlow(t *testing.T) {
	f := newMachineFixture()

	f.prefs.On("GetLinkedAccount", mock.Anything, testUserID).Return(testAccountID, nil).Once()
	f.provider.On("Roster", mock.Anything, testAccountID).Return([]domain.Entity{}, nil).Once()

	require.NoError(t, f.machine.ViewProfile(context.Background(), testUserID, testChatID))

	// The message is edited into the failure notice and no session stays
	// behind for the buttonless message.
	require.Len(t, f.transport.editedTexts, 1)
	require.Empty(t, f.transport.photoCaptions)
	require.Zero(t, f.registry.Len())
	f.assertExpectations(t)
}

func TestMachine_ViewProfile_TemplateLookupFailureEndsFlow(t *testing.T) {
	f := newMachineFixture()

	f.prefs.On("GetLinkedAccount", mock.Anything, testUserID).Return(testAccountID, nil).Once()
	f.provider.On("Roster", mock.Anything, testAccountID).Return(roster(2), nil).Once()
	f.provider.On("Rankings", mock.Anything, testAccountID).Return(map[string]domain.RankingStat{}, nil).Once()
	f.prefs.On("GetTemplateChoice", mock.Anything, testUserID, domain.TemplateProfile).
		Return(0, errors.New("db down")).Once()

	require.NoError(t, f.machine.ViewProfile(context.Background(), testUserID, testChatID))

	// The placeholder is replaced in place rather than left stuck.
	require.Len(t, f.transport.editedTexts, 1)
	require.Contains(t, f.transport.editedTexts[0], "Temporary problem")
	require.Zero(t, f.registry.Len())
	f.assertExpectations(t)
}

func TestMachine_GoBack_RosterFailureEndsFlow(t *testing.T) {
	f := newMachineFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}

	f.registry.Put(session.FlowSession{
		Ref:              ref,
		OwnerID:          testUserID,
		Kind:             session.KindCharacterDetailView,
		CurrentAccountID: testAccountID,
	})

	f.provider.On("Roster", mock.Anything, testAccountID).Return(nil, errors.New("upstream down")).Once()

	require.NoError(t, f.machine.GoBack(context.Background(), ref, testUserID))

	// The failure replaces the detail view and the dead message cannot be
	// navigated again.
	require.Len(t, f.transport.editedTexts, 1)
	require.Zero(t, f.registry.Len())

	err := f.machine.GoBack(context.Background(), ref, testUserID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeSessionExpired, appErr.Code)
	f.assertExpectations(t)
}

func TestMachine_ViewDetail_RendersCardAndGoBackRestoresRoster(t *testing.T) {
	f := newMachineFixture()
	ctx := context.Background()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}
	entities := roster(4)
	target := entities[1]

	f.registry.Put(session.FlowSession{
		Ref:              ref,
		OwnerID:          testUserID,
		Kind:             session.KindProfileView,
		CurrentAccountID: testAccountID,
	})

	// The detail transition re-fetches the roster rather than caching it.
	f.provider.On("Roster", mock.Anything, testAccountID).Return(entities, nil).Twice()
	f.provider.On("Rankings", mock.Anything, testAccountID).Return(map[string]domain.RankingStat{
		target.DisplayName: {TopPercent: 3.21, Rank: 1500, PoolSize: 250000},
	}, nil).Twice()
	f.prefs.On("GetTemplateChoice", mock.Anything, testUserID, domain.TemplateCard).Return(4, nil).Once()
	f.portraits.On("Get", mock.Anything, testUserID, target.DisplayName).Return(nil, repository.ErrNotFound).Once()
	f.renderer.On("RenderCard", mock.Anything, mock.MatchedBy(func(req gamedata.CardRequest) bool {
		return req.AccountID == testAccountID &&
			req.EntityID == target.ID &&
			req.Template == 4 &&
			req.Overlay != nil &&
			req.PortraitURL == ""
	})).Return([]byte("card"), nil).Once()

	require.NoError(t, f.machine.ViewDetail(ctx, ref, testUserID, target.ID))

	require.Len(t, f.transport.photoCaptions, 1)
	require.Contains(t, f.transport.photoCaptions[0], target.DisplayName)
	require.Contains(t, f.transport.photoCaptions[0], "Top 3.21% (1,500/250,000)")
	require.Equal(t, 1, buttonCount(f.transport.lastPhotoMarkup()))

	sess, err := f.registry.Get(ref)
	require.NoError(t, err)
	require.Equal(t, session.KindCharacterDetailView, sess.Kind)

	// Going back re-renders the roster view in place.
	f.prefs.On("GetTemplateChoice", mock.Anything, testUserID, domain.TemplateProfile).Return(1, nil).Once()
	f.renderer.On("RenderProfile", mock.Anything, testAccountID, 1).Return([]byte("png"), nil).Once()

	require.NoError(t, f.machine.GoBack(ctx, ref, testUserID))

	require.Equal(t, len(entities), buttonCount(f.transport.lastPhotoMarkup()))
	sess, err = f.registry.Get(ref)
	require.NoError(t, err)
	require.Equal(t, session.KindProfileView, sess.Kind)
	f.assertExpectations(t)
}

func TestMachine_ViewDetail_MissingEntityKeepsSession(t *testing.T) {
	f := newMachineFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}

	f.registry.Put(session.FlowSession{
		Ref:              ref,
		OwnerID:          testUserID,
		Kind:             session.KindProfileView,
		CurrentAccountID: testAccountID,
	})

	f.provider.On("Roster", mock.Anything, testAccountID).Return(roster(2), nil).Once()

	err := f.machine.ViewDetail(context.Background(), ref, testUserID, int64(99999999))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeValidation, appErr.Code)

	sess, getErr := f.registry.Get(ref)
	require.NoError(t, getErr)
	require.Equal(t, session.KindProfileView, sess.Kind)
	f.assertExpectations(t)
}

func TestMachine_ViewDetail_RenderFailureEndsFlow(t *testing.T) {
	f := newMachineFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}
	entities := roster(2)
	target := entities[0]

	f.registry.Put(session.FlowSession{
		Ref:              ref,
		OwnerID:          testUserID,
		Kind:             session.KindProfileView,
		CurrentAccountID: testAccountID,
	})

	f.provider.On("Roster", mock.Anything, testAccountID).Return(entities, nil).Once()
	f.provider.On("Rankings", mock.Anything, testAccountID).Return(nil, errors.New("down")).Once()
	f.prefs.On("GetTemplateChoice", mock.Anything, testUserID, domain.TemplateCard).Return(1, nil).Once()
	f.portraits.On("Get", mock.Anything, testUserID, target.DisplayName).Return(nil, repository.ErrNotFound).Once()
	f.renderer.On("RenderCard", mock.Anything, mock.Anything).Return(nil, errors.New("renderer exploded")).Once()

	err := f.machine.ViewDetail(context.Background(), ref, testUserID, target.ID)
	require.NoError(t, err)

	// Terminal: the failure notice replaces the card and the session ends.
	require.Len(t, f.transport.editedTexts, 1)
	require.True(t, strings.Contains(f.transport.editedTexts[0], "renderer exploded"))
	require.Zero(t, f.registry.Len())
	f.assertExpectations(t)
}

func TestMachine_GoBack_FromPendingConfirmationExpires(t *testing.T) {
	f := newMachineFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 500}

	f.registry.Put(session.FlowSession{
		Ref:              ref,
		OwnerID:          testUserID,
		Kind:             session.KindPendingLinkConfirmation,
		CurrentAccountID: testAccountID,
	})

	// Pending confirmations have no roster view to go back to.
	err := f.machine.GoBack(context.Background(), ref, testUserID)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeSessionExpired, appErr.Code)
	f.assertExpectations(t)
}
