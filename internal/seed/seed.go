// Package seed populates an empty database with the default GMAT topic
// catalogue and a pair of bootstrap accounts. Seeding is idempotent: a
// store that already holds topics or users is left untouched, so restarts
// against a persistent database never duplicate rows.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/repo"
)

// Credentials carries the initial passwords for the bootstrap accounts.
// Deployments are expected to rotate them on first login.
type Credentials struct {
	AdminPassword   string
	StudentPassword string
}

// defaultPassword is used when a credential is left unset.
const defaultPassword = "password"

func (c Credentials) withDefaults() Credentials {
	if c.AdminPassword == "" {
		c.AdminPassword = defaultPassword
	}
	if c.StudentPassword == "" {
		c.StudentPassword = defaultPassword
	}
	return c
}

// Topics returns the default topic catalogue in presentation order.
func Topics() []domain.Topic {
	return []domain.Topic{
		{
			Title:         "Quant - Problem Solving",
			Prompt:        "You are a GMAT Quantitative Problem Solving expert. Help students understand and solve GMAT problem solving questions involving arithmetic, algebra, geometry, word problems, and number properties. Provide step-by-step explanations and test-taking strategies. Always start by welcoming the student and offering examples of topics you can help with.",
			Description:   "Practice arithmetic, algebra, geometry, and word problem strategies.",
			Icon:          "calculator",
			Badge:         "Popular",
			BadgeColor:    "green",
			PracticeCount: "150+ practice problems",
		},
		{
			Title:         "Quant - Data Sufficiency",
			Prompt:        "You are a GMAT Data Sufficiency expert. Help students analyze what information is needed to solve quantitative problems following the GMAT data sufficiency format. Explain the methodology for evaluating statements, identifying when data is sufficient or insufficient, and avoiding common traps. Always start by welcoming the student and offering to explain the data sufficiency question format.",
			Description:   "Learn to analyze what information is needed to solve problems.",
			Icon:          "bar-chart-3",
			Badge:         "Challenging",
			BadgeColor:    "yellow",
			PracticeCount: "100+ practice questions",
		},
		{
			Title:         "Verbal - Critical Reasoning",
			Prompt:        "You are a GMAT Critical Reasoning expert. Help students identify arguments, analyze reasoning, strengthen or weaken arguments, find assumptions, and evaluate conclusions. Teach students to carefully read arguments and answer questions by precisely evaluating the logic. Always start by welcoming the student and explaining the different types of critical reasoning questions you can help with.",
			Description:   "Strengthen arguments and identify reasoning flaws.",
			Icon:          "code",
			Badge:         "Popular",
			BadgeColor:    "green",
			PracticeCount: "120+ practice passages",
		},
		{
			Title:         "Verbal - Sentence Correction",
			Prompt:        "You are a GMAT Sentence Correction expert. Help students identify and fix grammatical errors, improve clarity, and ensure concise expression in sentences. Focus on common GMAT grammar topics like subject-verb agreement, pronouns, modifiers, parallelism, idioms, and verb tense. Always start by welcoming the student and explaining the main concepts you can help with.",
			Description:   "Improve grammar, clarity, and concision in writing.",
			Icon:          "languages",
			Badge:         "Essential",
			BadgeColor:    "blue",
			PracticeCount: "200+ practice sentences",
		},
		{
			Title:         "Verbal - Reading Comprehension",
			Prompt:        "You are a GMAT Reading Comprehension expert. Help students analyze complex passages and answer questions about main ideas, details, inferences, and author's tone. Teach strategies for efficient reading, note-taking, and question answering techniques specific to GMAT. Always start by welcoming the student and offering to provide practice passages or explain reading strategies.",
			Description:   "Build skills for analyzing complex passages and answering questions.",
			Icon:          "book-text",
			Badge:         "Time-intensive",
			BadgeColor:    "purple",
			PracticeCount: "80+ practice passages",
		},
		{
			Title:         "Integrated Reasoning",
			Prompt:        "You are a GMAT Integrated Reasoning expert. Help students interpret graphs, tables, and multi-source reasoning problems. Guide them through analyzing data presented in various formats and drawing correct conclusions. Cover all four IR question types: graphics interpretation, table analysis, multi-source reasoning, and two-part analysis. Always start by welcoming the student and explaining the IR section format.",
			Description:   "Practice interpreting graphics, tables, and multi-source reasoning.",
			Icon:          "database",
			Badge:         "Challenging",
			BadgeColor:    "yellow",
			PracticeCount: "90+ practice questions",
		},
		{
			Title:         "Analytical Writing Assessment",
			Prompt:        "You are a GMAT Analytical Writing Assessment expert. Help students analyze arguments, identify flaws in reasoning, and structure coherent essays. Guide them in developing strong introductions, body paragraphs with examples, and conclusions. Provide feedback on essay organization, clarity, and effective critique of arguments. Always start by welcoming the student and explaining the AWA section format.",
			Description:   "Develop argument analysis and essay writing skills.",
			Icon:          "edit",
			Badge:         "Essential",
			BadgeColor:    "blue",
			PracticeCount: "50+ practice prompts",
		},
		{
			Title:         "Test Strategy & Timing",
			Prompt:        "You are a GMAT Test Strategy and Timing expert. Help students develop effective approaches for each section, manage time efficiently, and build test-taking stamina. Provide guidance on question pacing, when to guess, and how to maintain focus during the long exam. Share strategies for the adaptive nature of the test and dealing with test anxiety. Always start by welcoming the student and asking which aspects of test strategy they want to focus on.",
			Description:   "Learn time management and strategic approaches to test taking.",
			Icon:          "zap",
			Badge:         "Popular",
			BadgeColor:    "green",
			PracticeCount: "Practice & advice",
		},
	}
}

// Run seeds topics and bootstrap users into an empty store.
func Run(ctx context.Context, db *gorm.DB, log zerolog.Logger, cred Credentials) error {
	cred = cred.withDefaults()
	n, err := repo.CountTopics(ctx, db)
	if err != nil {
		return fmt.Errorf("seed: counting topics: %w", err)
	}
	if n == 0 {
		for _, t := range Topics() {
			if err := repo.CreateTopic(ctx, db, &t); err != nil {
				return fmt.Errorf("seed: creating topic %q: %w", t.Title, err)
			}
		}
		log.Info().Int("topics", len(Topics())).Msg("seeded topic catalogue")
	}

	users, err := repo.CountUsers(ctx, db)
	if err != nil {
		return fmt.Errorf("seed: counting users: %w", err)
	}
	if users > 0 {
		return nil
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte(cred.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hashing admin password: %w", err)
	}
	studentHash, err := bcrypt.GenerateFromPassword([]byte(cred.StudentPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hashing student password: %w", err)
	}
	if _, err := repo.CreateUser(ctx, db, "admin", "admin@gmat.ai", string(adminHash), true); err != nil {
		return fmt.Errorf("seed: creating admin user: %w", err)
	}
	if _, err := repo.CreateUser(ctx, db, "student", "student@gmat.ai", string(studentHash), false); err != nil {
		return fmt.Errorf("seed: creating student user: %w", err)
	}
	log.Info().Msg("seeded bootstrap accounts")
	return nil
}
