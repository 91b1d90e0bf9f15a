package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ndonskov/trivia_bot/internal/config"
	"github.com/ndonskov/trivia_bot/internal/database"
	"github.com/ndonskov/trivia_bot/internal/models"
	"github.com/xuri/excelize/v2"
)

// Imports a quiz from an xlsx workbook. Each sheet becomes a round,
// each data row a question:
//
//	col A: question text
//	col B-E: options (leave blank for an open question)
//	col F: correct option number 1-4, or the expected answer text
//	       for an open question (optional)
//	col G: points (optional, defaults to 1)
//	col H: time limit in seconds (optional, defaults to 30)
//
// The first row of every sheet is treated as a header and skipped.
func main() {
	filePath := flag.String("file", "", "path to the xlsx workbook")
	title := flag.String("title", "", "quiz title")
	description := flag.String("description", "", "quiz description")
	creatorTgID := flag.Int64("creator", 0, "telegram ID of the quiz author")
	flag.Parse()

	if *filePath == "" || *title == "" {
		log.Fatal("both -file and -title are required")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}

	var author models.User
	if err := db.Where("telegram_id = ?", *creatorTgID).First(&author).Error; err != nil {
		log.Fatalf("author with telegram ID %d not found, have them /start the bot first", *creatorTgID)
	}
	if !author.CanModerate() {
		log.Fatalf("user %q cannot author quizzes", author.Username)
	}

	f, err := excelize.OpenFile(*filePath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	quiz := models.Quiz{
		Title:       *title,
		Description: *description,
		CreatedBy:   author.ID,
	}

	totalQuestions := 0
	for sheetIdx, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			fmt.Printf("Error reading sheet %s: %v\n", sheetName, err)
			continue
		}

		round := models.Round{
			Title: sheetName,
			Order: sheetIdx + 1,
		}

		for i, row := range rows {
			if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}

			question, err := parseQuestion(row)
			if err != nil {
				fmt.Printf("Skipping %s row %d: %v\n", sheetName, i+1, err)
				continue
			}
			question.Order = len(round.Questions) + 1
			round.Questions = append(round.Questions, *question)
		}

		if len(round.Questions) == 0 {
			fmt.Printf("Sheet %s has no questions, skipping\n", sheetName)
			continue
		}
		quiz.Rounds = append(quiz.Rounds, round)
		totalQuestions += len(round.Questions)
	}

	if totalQuestions == 0 {
		log.Fatal("no questions found in workbook")
	}

	if err := db.Create(&quiz).Error; err != nil {
		log.Fatal("failed to create quiz: ", err)
	}

	fmt.Printf("Imported quiz %q: %d rounds, %d questions (quiz ID %d)\n",
		quiz.Title, len(quiz.Rounds), totalQuestions, quiz.ID)
}

func parseQuestion(row []string) (*models.Question, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	q := &models.Question{Text: cell(0)}

	var options []string
	for col := 1; col <= 4; col++ {
		if v := cell(col); v != "" {
			options = append(options, v)
		}
	}

	answer := cell(5)
	if len(options) > 0 {
		q.Type = models.QuestionTypeMultipleChoice
		if err := q.SetOptions(options); err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(options) {
			return nil, fmt.Errorf("correct option %q is not a number between 1 and %d", answer, len(options))
		}
		idx := n - 1
		q.CorrectOption = &idx
		q.CorrectAnswer = options[idx]
	} else {
		q.Type = models.QuestionTypeOpen
		q.CorrectAnswer = answer
	}

	if v := cell(6); v != "" {
		points, err := strconv.ParseFloat(v, 64)
		if err != nil || points <= 0 {
			return nil, fmt.Errorf("invalid points value %q", v)
		}
		q.Points = points
	}

	if v := cell(7); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid time limit %q", v)
		}
		q.TimeLimit = limit
	}

	return q, nil
}
