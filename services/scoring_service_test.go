package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Bekzhan05/quiz-platform/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedParticipant(repo *fakeParticipantRepo, tournamentID, userID int) *models.Participant {
	p := &models.Participant{
		TournamentID: tournamentID,
		UserID:       userID,
		Discipline:   models.DisciplineMath,
		Status:       models.ParticipantConfirmed,
	}
	repo.CreateOrGet(context.Background(), p)
	return p
}

func TestAddScoreAccumulates(t *testing.T) {
	participantRepo := newFakeParticipantRepo()
	p := seedParticipant(participantRepo, 1, 1)

	svc := NewScoringService(participantRepo, newFakeQuestionRepo(), nil, nil, nil, nil, discardLogger())

	// Итог — сумма дельт, включая отрицательные корректировки.
	deltas := []float64{5, 3, -1}
	var last *models.Participant
	for _, d := range deltas {
		var err error
		last, err = svc.AddScore(context.Background(), AddScoreInput{
			ParticipantID: p.ID,
			PointsDelta:   d,
			CasesDelta:    1,
		})
		if err != nil {
			t.Fatalf("AddScore(%v) error = %v", d, err)
		}
	}

	if last.Score != 7 {
		t.Errorf("score = %v, want 7", last.Score)
	}
	if last.CasesResolved != 3 {
		t.Errorf("cases resolved = %d, want 3", last.CasesResolved)
	}
}

func TestAddScoreUpdatesMirror(t *testing.T) {
	participantRepo := newFakeParticipantRepo()
	p := seedParticipant(participantRepo, 1, 1)
	mirror := newFakeLeaderboardMirror()

	svc := NewScoringService(participantRepo, newFakeQuestionRepo(), nil, nil, mirror, nil, discardLogger())

	if _, err := svc.AddScore(context.Background(), AddScoreInput{
		ParticipantID: p.ID,
		PointsDelta:   5,
		CasesDelta:    1,
	}); err != nil {
		t.Fatalf("AddScore() error = %v", err)
	}

	if mirror.setCalls != 1 {
		t.Fatalf("mirror writes = %d, want 1", mirror.setCalls)
	}
	top, _ := mirror.TopN(context.Background(), p.TournamentID, p.Discipline, 1)
	if len(top) != 1 || top[0].ParticipantID != p.ID || top[0].Score != 5 {
		t.Errorf("mirror top = %+v, want participant %d with score 5", top, p.ID)
	}
}

func TestAddScoreValidation(t *testing.T) {
	participantRepo := newFakeParticipantRepo()
	p := seedParticipant(participantRepo, 1, 1)
	removed := seedParticipant(participantRepo, 1, 2)
	participantRepo.UpdateStatus(context.Background(), removed.ID, models.ParticipantRemoved)

	svc := NewScoringService(participantRepo, newFakeQuestionRepo(), nil, nil, nil, nil, discardLogger())

	tests := []struct {
		name    string
		input   AddScoreInput
		wantErr error
	}{
		{"negative cases delta", AddScoreInput{ParticipantID: p.ID, PointsDelta: 1, CasesDelta: -1}, ErrScoreCasesNegative},
		{"unknown participant", AddScoreInput{ParticipantID: 999, PointsDelta: 1}, ErrParticipantNotFound},
		{"removed participant", AddScoreInput{ParticipantID: removed.ID, PointsDelta: 1}, ErrParticipantRemoved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddScore(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddScore() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmitAnswerScoresViaOracle(t *testing.T) {
	participantRepo := newFakeParticipantRepo()
	questionRepo := newFakeQuestionRepo()
	p := seedParticipant(participantRepo, 1, 1)
	question := &models.Question{
		TournamentID:    1,
		Discipline:      models.DisciplineMath,
		Text:            "2+2?",
		ReferenceAnswer: "4",
		Points:          10,
	}
	questionRepo.Create(context.Background(), question)

	svc := NewScoringService(participantRepo, questionRepo, fakeOracle{fraction: 0.5}, nil, nil, nil, discardLogger())

	updated, err := svc.SubmitAnswer(context.Background(), SubmitAnswerInput{
		ParticipantID: p.ID,
		QuestionID:    question.ID,
		Answer:        "four",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if updated.Score != 5 {
		t.Errorf("score = %v, want 5 (0.5 of 10 points)", updated.Score)
	}
	if updated.CasesResolved != 1 {
		t.Errorf("cases resolved = %d, want 1", updated.CasesResolved)
	}
}

func TestSubmitAnswerOracleFailureScoresZero(t *testing.T) {
	participantRepo := newFakeParticipantRepo()
	questionRepo := newFakeQuestionRepo()
	p := seedParticipant(participantRepo, 1, 1)
	question := &models.Question{TournamentID: 1, Text: "q", Points: 10}
	questionRepo.Create(context.Background(), question)

	oracle := fakeOracle{err: errors.New("model overloaded")}
	svc := NewScoringService(participantRepo, questionRepo, oracle, nil, nil, nil, discardLogger())

	updated, err := svc.SubmitAnswer(context.Background(), SubmitAnswerInput{
		ParticipantID: p.ID,
		QuestionID:    question.ID,
		Answer:        "anything",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v, oracle failure must not fail the request", err)
	}
	if updated.Score != 0 {
		t.Errorf("score = %v, want 0 on oracle failure", updated.Score)
	}
	if updated.CasesResolved != 1 {
		t.Errorf("cases resolved = %d, want 1: the attempt still counts", updated.CasesResolved)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	participantRepo := newFakeParticipantRepo()
	questionRepo := newFakeQuestionRepo()
	p := seedParticipant(participantRepo, 1, 1)

	svc := NewScoringService(participantRepo, questionRepo, fakeOracle{fraction: 1}, nil, nil, nil, discardLogger())

	if _, err := svc.SubmitAnswer(context.Background(), SubmitAnswerInput{
		ParticipantID: p.ID, QuestionID: 1, Answer: "   ",
	}); !errors.Is(err, ErrAnswerEmpty) {
		t.Errorf("blank answer: error = %v, want %v", err, ErrAnswerEmpty)
	}

	if _, err := svc.SubmitAnswer(context.Background(), SubmitAnswerInput{
		ParticipantID: p.ID, QuestionID: 42, Answer: "x",
	}); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("missing question: error = %v, want %v", err, ErrQuestionNotFound)
	}
}
