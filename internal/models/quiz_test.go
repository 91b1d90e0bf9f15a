package models

import "testing"

func intPtr(i int) *int { return &i }

func TestQuestionBeforeSave(t *testing.T) {
	mc := func(correct *int, opts ...string) Question {
		q := Question{Type: QuestionTypeMultipleChoice, Text: "q", CorrectOption: correct}
		if err := q.SetOptions(opts); err != nil {
			t.Fatalf("SetOptions() error = %v", err)
		}
		return q
	}

	tests := []struct {
		name     string
		question Question
		wantErr  bool
	}{
		{"open question", Question{Type: QuestionTypeOpen, Text: "capital of France?"}, false},
		{"open with option index", Question{Type: QuestionTypeOpen, CorrectOption: intPtr(0)}, true},
		{"multiple choice valid", mc(intPtr(1), "Paris", "London"), false},
		{"multiple choice no options", Question{Type: QuestionTypeMultipleChoice, CorrectOption: intPtr(0)}, true},
		{"multiple choice no correct option", mc(nil, "Paris", "London"), true},
		{"correct option out of range", mc(intPtr(2), "Paris", "London"), true},
		{"negative correct option", mc(intPtr(-1), "Paris", "London"), true},
		{"unknown type", Question{Type: "essay"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.question.BeforeSave(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("BeforeSave() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionBeforeSaveDefaults(t *testing.T) {
	q := Question{Type: QuestionTypeOpen, Text: "q"}
	if err := q.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave() error = %v", err)
	}
	if q.Points != DefaultQuestionPoints {
		t.Errorf("Points = %v, want %v", q.Points, DefaultQuestionPoints)
	}
	if q.TimeLimit != DefaultQuestionTimeLimit {
		t.Errorf("TimeLimit = %v, want %v", q.TimeLimit, DefaultQuestionTimeLimit)
	}
}

func TestQuestionOptionRoundTrip(t *testing.T) {
	var q Question
	if err := q.SetOptions([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("SetOptions() error = %v", err)
	}
	got := q.OptionList()
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("OptionList() = %v, want [a b c]", got)
	}
}
