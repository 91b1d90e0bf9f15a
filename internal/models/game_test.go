package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"setup to ready", GameStatusSetup, GameStatusReady, true},
		{"ready to active", GameStatusReady, GameStatusActive, true},
		{"active to paused", GameStatusActive, GameStatusPaused, true},
		{"paused to active", GameStatusPaused, GameStatusActive, true},
		{"active to finished", GameStatusActive, GameStatusFinished, true},
		{"paused to finished", GameStatusPaused, GameStatusFinished, true},
		{"setup to active skips ready", GameStatusSetup, GameStatusActive, false},
		{"ready to paused", GameStatusReady, GameStatusPaused, false},
		{"finished is terminal", GameStatusFinished, GameStatusActive, false},
		{"finished to ready", GameStatusFinished, GameStatusReady, false},
		{"backwards ready to setup", GameStatusReady, GameStatusSetup, false},
		{"unknown status", "limbo", GameStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestGameBeforeSave(t *testing.T) {
	tests := []struct {
		name    string
		game    Game
		wantErr bool
	}{
		{"valid setup game", Game{Status: GameStatusSetup, JoinCode: "AB12CD"}, false},
		{"empty status defaults", Game{JoinCode: "AB12CD"}, false},
		{"invalid status", Game{Status: "running", JoinCode: "AB12CD"}, true},
		{"missing join code", Game{Status: GameStatusSetup}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.game.BeforeSave(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("BeforeSave() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGameIsJoinable(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{GameStatusSetup, true},
		{GameStatusReady, true},
		{GameStatusActive, false},
		{GameStatusPaused, false},
		{GameStatusFinished, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			g := Game{Status: tt.status}
			if got := g.IsJoinable(); got != tt.want {
				t.Errorf("IsJoinable() with status %q = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
