package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"newsmentor/internal/model"
)

const (
	defaultQuizTopic  = "Quiz Topic"
	multipleChoiceLen = 4
)

func (c *Client) Explain(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("explain: empty text")
	}

	content, err := c.complete(ctx, "explain", Completion{
		User:        "Explain the following text: " + text,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("explain: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("explain: %w: empty reply", ErrMalformedResponse)
	}
	return content, nil
}

// GenerateQuiz asks for a five question quiz and normalizes the reply:
// missing ids become q<n>, unknown types become multiple-choice, a
// multiple-choice question whose answer is not among its four options gets
// the answer placed in the last option, and true/false answers are
// canonicalized.
func (c *Client) GenerateQuiz(ctx context.Context, text string) (*model.Quiz, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("generate quiz: empty text")
	}

	var raw struct {
		MainTopic string            `json:"mainTopic"`
		Questions []rawQuizQuestion `json:"questions"`
	}
	err := c.completeJSON(ctx, "generate_quiz", Completion{
		System:      quizPrompt,
		User:        "Text: " + text,
		Temperature: 0.7,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	quiz, err := normalizeQuiz(raw.MainTopic, raw.Questions)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	return quiz, nil
}

type rawQuizQuestion struct {
	ID            looseString   `json:"id"`
	Type          string        `json:"type"`
	Question      string        `json:"question"`
	CorrectAnswer looseString   `json:"correctAnswer"`
	Options       []looseString `json:"options"`
}

func normalizeQuiz(mainTopic string, questions []rawQuizQuestion) (*model.Quiz, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: quiz has no questions", ErrMalformedResponse)
	}

	quiz := &model.Quiz{
		MainTopic: strings.TrimSpace(mainTopic),
		Questions: make([]model.QuizQuestion, 0, len(questions)),
	}
	if quiz.MainTopic == "" {
		quiz.MainTopic = defaultQuizTopic
	}

	for i, raw := range questions {
		q := model.QuizQuestion{
			ID:            string(raw.ID),
			Type:          raw.Type,
			Question:      strings.TrimSpace(raw.Question),
			CorrectAnswer: strings.TrimSpace(string(raw.CorrectAnswer)),
		}

		if q.ID == "" {
			q.ID = "q" + strconv.Itoa(i+1)
		}

		switch q.Type {
		case model.QuestionMultipleChoice, model.QuestionTrueFalse, model.QuestionFillBlank:
		default:
			q.Type = model.QuestionMultipleChoice
		}

		if q.Question == "" {
			return nil, fmt.Errorf("%w: question %d is missing question text", ErrMalformedResponse, i+1)
		}
		if q.CorrectAnswer == "" {
			return nil, fmt.Errorf("%w: question %d is missing correct answer", ErrMalformedResponse, i+1)
		}

		switch q.Type {
		case model.QuestionMultipleChoice:
			if len(raw.Options) != multipleChoiceLen {
				return nil, fmt.Errorf("%w: question %d must have exactly %d options", ErrMalformedResponse, i+1, multipleChoiceLen)
			}
			q.Options = make([]string, len(raw.Options))
			found := false
			for j, opt := range raw.Options {
				q.Options[j] = string(opt)
				if q.Options[j] == q.CorrectAnswer {
					found = true
				}
			}
			if !found {
				q.Options[multipleChoiceLen-1] = q.CorrectAnswer
			}
		case model.QuestionTrueFalse:
			if strings.EqualFold(q.CorrectAnswer, "true") {
				q.CorrectAnswer = "True"
			} else {
				q.CorrectAnswer = "False"
			}
		}

		quiz.Questions = append(quiz.Questions, q)
	}

	return quiz, nil
}

// ExplainQuiz explains the questions the user got wrong.
func (c *Client) ExplainQuiz(ctx context.Context, mainTopic string, incorrect []model.AnsweredQuestion) (string, error) {
	if len(incorrect) == 0 {
		return "", fmt.Errorf("explain quiz: no questions")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Incorrect quiz answers about %q:\n", mainTopic)
	for i, q := range incorrect {
		fmt.Fprintf(&sb, "\n%d. Question: %s\n   User's Answer: %s\n   Correct Answer: %s\n", i+1, q.Question, q.UserAnswer, q.CorrectAnswer)
		if q.Type != "" {
			fmt.Fprintf(&sb, "   Type: %s\n", q.Type)
		}
	}

	content, err := c.complete(ctx, "explain_quiz", Completion{
		System:      quizExplainPrompt,
		User:        sb.String(),
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("explain quiz: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("explain quiz: %w: empty reply", ErrMalformedResponse)
	}
	return content, nil
}

// GenerateFlashcards fills defaults for any card field the model omits.
func (c *Client) GenerateFlashcards(ctx context.Context, text string) ([]model.Flashcard, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("generate flashcards: empty text")
	}

	var raw struct {
		Flashcards []struct {
			ID       looseString `json:"id"`
			Front    string      `json:"front"`
			Back     string      `json:"back"`
			Category string      `json:"category"`
		} `json:"flashcards"`
	}
	err := c.completeJSON(ctx, "generate_flashcards", Completion{
		System:      flashcardPrompt,
		User:        text,
		Temperature: 0.5,
		MaxTokens:   2000,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}
	if raw.Flashcards == nil {
		return nil, fmt.Errorf("generate flashcards: %w: missing flashcards", ErrMalformedResponse)
	}

	cards := make([]model.Flashcard, len(raw.Flashcards))
	for i, f := range raw.Flashcards {
		cards[i] = model.Flashcard{
			ID:       orDefault(string(f.ID), strconv.Itoa(i+1)),
			Front:    orDefault(f.Front, "Question not generated"),
			Back:     orDefault(f.Back, "Answer not generated"),
			Category: orDefault(f.Category, model.FlashcardMainIdea),
		}
	}
	return cards, nil
}

// IdentifyConcepts returns every whole-word occurrence of each concept the
// model names, longest concept first. Indices are rune offsets into text.
func (c *Client) IdentifyConcepts(ctx context.Context, text string) ([]model.Concept, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("identify concepts: empty text")
	}

	var raw struct {
		Concepts []struct {
			Text string `json:"text"`
			Type string `json:"type"`
		} `json:"concepts"`
	}
	err := c.completeJSON(ctx, "identify_concepts", Completion{
		System:      conceptPrompt,
		User:        text,
		Temperature: 0.3,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("identify concepts: %w", err)
	}

	concepts := []model.Concept{}
	for _, rc := range raw.Concepts {
		for _, span := range findOccurrences(text, rc.Text) {
			concepts = append(concepts, model.Concept{
				Text:       rc.Text,
				Type:       rc.Type,
				StartIndex: span[0],
				EndIndex:   span[1],
			})
		}
	}

	sort.SliceStable(concepts, func(i, j int) bool {
		return utf8.RuneCountInString(concepts[i].Text) > utf8.RuneCountInString(concepts[j].Text)
	})

	return concepts, nil
}

// findOccurrences returns [start, end) rune offsets of phrase in text where
// the match is bounded by whitespace or the ends of text.
func findOccurrences(text, phrase string) [][2]int {
	if phrase == "" {
		return nil
	}

	var spans [][2]int
	pos := 0
	for pos <= len(text) {
		idx := strings.Index(text[pos:], phrase)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(phrase)

		if boundedBySpace(text, start, end) {
			runeStart := utf8.RuneCountInString(text[:start])
			spans = append(spans, [2]int{runeStart, runeStart + utf8.RuneCountInString(phrase)})
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return spans
}

func boundedBySpace(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsSpace(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// looseString accepts JSON strings, numbers and booleans.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*s = ""
		return nil
	}
	*s = looseString(fmt.Sprint(v))
	return nil
}
