package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avasiliev/docstream/internal/core/domain"
	"github.com/avasiliev/docstream/internal/core/ports"
)

// DefaultInstruction frames the retrieved passage for the completion model.
const DefaultInstruction = "You are a helpful virtual assistant that answers questions using the content below. " +
	"Your task is to create detailed answers to the questions by combining your understanding of the world " +
	"with the content provided below. Do not share links."

// ChatUseCase answers a question about one document: it retrieves the best
// matching passage from the document-search backend and hands it to the
// completion model together with the question.
type ChatUseCase struct {
	search      ports.ContentSearcher
	model       ports.CompletionModel
	instruction string
}

func NewChatUseCase(search ports.ContentSearcher, model ports.CompletionModel, instruction string) *ChatUseCase {
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}
	return &ChatUseCase{
		search:      search,
		model:       model,
		instruction: instruction,
	}
}

func (uc *ChatUseCase) Answer(ctx context.Context, documentID int, question string) (*domain.ChatAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", errors.New("question is required"))
	}
	if documentID < 1 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", fmt.Errorf("invalid document id: %d", documentID))
	}

	result, err := uc.search.Content(ctx, documentID, question)
	if err != nil {
		return nil, fmt.Errorf("search document content: %w", err)
	}

	system := fmt.Sprintf("%s\n===\n%s\n===", uc.instruction, result.Text)
	text, err := uc.model.Complete(ctx, system, question)
	if err != nil {
		return nil, fmt.Errorf("generate completion: %w", err)
	}

	return &domain.ChatAnswer{
		Text:  text,
		Score: result.Score,
	}, nil
}
