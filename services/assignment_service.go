package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ramprakash852/AI-storyteller/internal/ai"
	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/models"
)

// questionCount is the fixed quiz length. The generation prompt asks
// for this many questions and anything else is rejected outright, since
// the assignment is persisted once and never regenerated.
const questionCount = 5

const questionSystemPrompt = `You are a helpful and creative assistant designed to generate engaging and age-appropriate questions for children. Your questions should be fun, imaginative, and suitable for the given story, ensuring they are both entertaining and educational.`

const gradingSystemPrompt = `You are a supportive reading assistant focused on enhancing children's reading comprehension.
You will be given the full story, the question, the child's answer,
and the correct answer. Use this information to compare the child's response with the correct answer and assess their understanding.
Provide constructive and encouraging feedback that highlights key areas for improvement,
helping the child connect with important details and themes in the story. Offer a rating to indicate their comprehension level, and keep the feedback positive and motivating to foster a love for reading.`

// AssignmentService generates comprehension quizzes and grades the
// answers a child submits against them.
type AssignmentService struct {
	assignments AssignmentStore
	feedbacks   FeedbackStore
	stories     StoryStore
	completer   ai.Completer
}

func NewAssignmentService(assignments AssignmentStore, feedbacks FeedbackStore, stories StoryStore, completer ai.Completer) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		feedbacks:   feedbacks,
		stories:     stories,
		completer:   completer,
	}
}

// GetOrCreateAssignment returns the existing quiz for the (story, user)
// pair or generates one. The pair is unique, so repeated calls never
// regenerate questions.
func (a *AssignmentService) GetOrCreateAssignment(ctx context.Context, storyID string, userID primitive.ObjectID) (*models.Assignment, error) {
	sid, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return nil, ErrNotFound
	}

	existing, err := a.assignments.FindAssignment(ctx, sid, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	story, err := a.stories.GetStory(ctx, sid)
	if err != nil {
		return nil, err
	}

	questions, err := a.generateQuestions(ctx, story)
	if err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		SID:       sid,
		UID:       userID,
		Questions: questions,
		CreatedAt: time.Now(),
	}
	id, err := a.assignments.InsertAssignment(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = id

	logger.Info("Assignment created", "assignment_id", id.Hex(), "story_id", storyID)
	return assignment, nil
}

func (a *AssignmentService) generateQuestions(ctx context.Context, story *models.Story) ([]models.Question, error) {
	userPrompt := fmt.Sprintf(`Generate questions and answers for the story %q with the story content:

%s.
The output should be strictly in JSON format with the following structure:
{
  "questions": [
    {
      "question": "The question you want to ask",
      "answer": "The correct answer which you think is right",
      "userAnswer": ""
    }
  ]
}
Generate exactly 5 questions. Ensure that the JSON is valid, properly formatted, and contains no additional commentary or explanations.`,
		story.StoryTitle, story.WholeText())

	raw, usage, err := a.completer.Complete(ctx, questionSystemPrompt, userPrompt, 0.7)
	if err != nil {
		return nil, fmt.Errorf("%w: question generation failed: %v", ErrUpstream, err)
	}
	logger.Info("Question generation usage", "total_tokens", usage.TotalTokens)

	var parsed struct {
		Questions []models.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(StripCodeFences(flattenLine(raw))), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse questions: %v", ErrInvalidLLMOutput, err)
	}
	if len(parsed.Questions) != questionCount {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", ErrInvalidLLMOutput, questionCount, len(parsed.Questions))
	}
	for i, q := range parsed.Questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return nil, fmt.Errorf("%w: question %d is missing its text or answer", ErrInvalidLLMOutput, i+1)
		}
	}
	return parsed.Questions, nil
}

// gradedItem accepts the model's answer fields under every key variant
// it has been seen to emit.
type gradedItem struct {
	Question              string `json:"question"`
	Answer                string `json:"answer"`
	Rating                int    `json:"rating"`
	Feedback              string `json:"feedback"`
	UserAnswer            string `json:"userAnswer"`
	UserAnswerSnake       string `json:"user_answer"`
	UserAnswerPascal      string `json:"UserAnswer"`
	UserResponse          string `json:"userResponse"`
	PositiveReinforcement string `json:"positiveReinforcement"`
	PositiveReinfSnake    string `json:"positive_reinforcement"`
	PositiveReinfPascal   string `json:"PositiveReinforcement"`
}

func (g *gradedItem) userAnswer() string {
	for _, v := range []string{g.UserAnswer, g.UserAnswerSnake, g.UserAnswerPascal, g.UserResponse} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (g *gradedItem) positiveReinforcement() string {
	for _, v := range []string{g.PositiveReinforcement, g.PositiveReinfSnake, g.PositiveReinfPascal} {
		if v != "" {
			return v
		}
	}
	return ""
}

// SubmitAnswers merges the child's answers into the assignment
// questions positionally, grades them, and records a new feedback
// document. Every submission produces a fresh grading run.
func (a *AssignmentService) SubmitAnswers(ctx context.Context, storyID string, userID primitive.ObjectID, answers []string) (*models.Feedback, error) {
	sid, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return nil, ErrNotFound
	}

	assignment, err := a.assignments.FindAssignment(ctx, sid, userID)
	if err != nil {
		return nil, err
	}
	if len(answers) != len(assignment.Questions) {
		return nil, fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidInput, len(assignment.Questions), len(answers))
	}
	story, err := a.stories.GetStory(ctx, sid)
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, len(assignment.Questions))
	copy(questions, assignment.Questions)
	for i, answer := range answers {
		questions[i].UserAnswer = answer
	}

	items, err := a.gradeAnswers(ctx, story, questions)
	if err != nil {
		return nil, err
	}

	if err := a.assignments.UpdateAssignmentQuestions(ctx, assignment.ID, questions); err != nil {
		logger.Warn("Failed to persist submitted answers", "assignment_id", assignment.ID.Hex(), "error", err)
	}

	feedback := &models.Feedback{
		SID:       sid,
		UID:       userID,
		Feedbacks: items,
		CreatedAt: time.Now(),
	}
	id, err := a.feedbacks.InsertFeedback(ctx, feedback)
	if err != nil {
		return nil, err
	}
	feedback.ID = id

	logger.Info("Feedback generated", "feedback_id", id.Hex(), "story_id", storyID)
	return feedback, nil
}

func (a *AssignmentService) gradeAnswers(ctx context.Context, story *models.Story, questions []models.Question) ([]models.FeedbackItem, error) {
	var qp strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&qp, "%d. Question: %q\n   - Correct Answer: %q\n   - User's Answer: %q\n", i+1, q.Question, q.Answer, q.UserAnswer)
	}

	userPrompt := fmt.Sprintf(`Evaluate the user's responses to the following questions based on the provided story.

Full Story:
%q

Questions and Answers:
%s

For each question, provide:
1. A rating out of 5 based on how accurately the user's answer shows understanding of the story.
2. Constructive feedback that helps the child improve their comprehension skills.
3. Positive reinforcement to keep the child motivated.

**Output the results in strict JSON format** as shown below:

{
  "results": [
    {
      "question": "Question text here",
      "rating": 4,
      "answer": "Correct answer here",
      "userAnswer": "User's answer here",
      "feedback": "Feedback text here",
      "positiveReinforcement": "Positive reinforcement text here"
    }
  ]
}

Generate feedback for all %d questions. Remember to keep the feedback child-friendly and focused on helping them build reading comprehension skills.`,
		story.WholeText(), qp.String(), len(questions))

	raw, usage, err := a.completer.Complete(ctx, gradingSystemPrompt, userPrompt, 0.7)
	if err != nil {
		return nil, fmt.Errorf("%w: feedback generation failed: %v", ErrUpstream, err)
	}
	logger.Info("Feedback generation usage", "total_tokens", usage.TotalTokens)

	var parsed struct {
		Results []gradedItem `json:"results"`
	}
	if err := json.Unmarshal([]byte(StripCodeFences(flattenLine(raw))), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse feedback: %v", ErrInvalidLLMOutput, err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("%w: no results in feedback response", ErrInvalidLLMOutput)
	}

	items := make([]models.FeedbackItem, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		items = append(items, models.FeedbackItem{
			Question:              r.Question,
			Answer:                r.Answer,
			UserAnswer:            r.userAnswer(),
			Rating:                r.Rating,
			Feedback:              r.Feedback,
			PositiveReinforcement: r.positiveReinforcement(),
		})
	}
	return items, nil
}

// GetFeedback returns the newest feedback for the (story, user) pair.
func (a *AssignmentService) GetFeedback(ctx context.Context, storyID string, userID primitive.ObjectID) (*models.Feedback, error) {
	sid, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return nil, ErrNotFound
	}
	return a.feedbacks.LatestFeedback(ctx, sid, userID)
}
