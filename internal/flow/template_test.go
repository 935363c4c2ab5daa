package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	"github.com/sayu-dev/showcase-bot/internal/domain"
	apperrors "github.com/sayu-dev/showcase-bot/internal/errors"
	"github.com/sayu-dev/showcase-bot/internal/session"
)

func newTemplateFixture() (*TemplateFlow, *mockPrefs, *fakeTransport) {
	log := testLogger()
	prefs := &mockPrefs{}
	transport := newFakeTransport()
	tf := NewTemplateFlow(prefs, transport, keyboard.NewBuilder(log), log)
	return tf, prefs, transport
}

func TestTemplateFlow_OpenMenu(t *testing.T) {
	tf, prefs, transport := newTemplateFixture()

	require.NoError(t, tf.OpenMenu(context.Background(), testChatID))
	require.Len(t, transport.sentTexts, 1)
	prefs.AssertExpectations(t)
}

func TestTemplateFlow_ShowCategory(t *testing.T) {
	tf, prefs, transport := newTemplateFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 600}

	prefs.On("GetTemplateChoice", mock.Anything, testUserID, domain.TemplateCard).Return(3, nil).Once()

	require.NoError(t, tf.ShowCategory(context.Background(), ref, testUserID, "card"))
	require.Len(t, transport.editedTexts, 1)
	prefs.AssertExpectations(t)
}

func TestTemplateFlow_ShowCategory_RejectsUnknownCategory(t *testing.T) {
	tf, prefs, _ := newTemplateFixture()
	ref := session.MessageRef{ChatID: testChatID, MessageID: 600}

	err := tf.ShowCategory(context.Background(), ref, testUserID, "banner")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.CodeValidation, appErr.Code)
	prefs.AssertExpectations(t)
}

func TestTemplateFlow_Choose(t *testing.T) {
	testCases := []struct {
		name     string
		category string
		index    int
		wantErr  bool
	}{
		{name: "profile low bound", category: "profile", index: 1},
		{name: "profile high bound", category: "profile", index: 2},
		{name: "card high bound", category: "card", index: 5},
		{name: "profile out of range", category: "profile", index: 3, wantErr: true},
		{name: "card out of range", category: "card", index: 6, wantErr: true},
		{name: "zero index", category: "card", index: 0, wantErr: true},
		{name: "unknown category", category: "sticker", index: 1, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tf, prefs, transport := newTemplateFixture()
			ref := session.MessageRef{ChatID: testChatID, MessageID: 600}

			if !tc.wantErr {
				prefs.On("SetTemplateChoice", mock.Anything, testUserID, domain.TemplateCategory(tc.category), tc.index).
					Return(nil).Once()
			}

			err := tf.Choose(context.Background(), ref, testUserID, tc.category, tc.index)

			if tc.wantErr {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				require.Equal(t, apperrors.CodeValidation, appErr.Code)
				require.Empty(t, transport.editedTexts)
			} else {
				require.NoError(t, err)
				// The menu re-renders in place and stays open.
				require.Len(t, transport.editedTexts, 1)
			}

			prefs.AssertExpectations(t)
		})
	}
}
