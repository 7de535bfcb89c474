package cmd

import (
	"fmt"
	"os/user"

	"github.com/spf13/cobra"

	apperrors "github.com/eventlife/eventlife/internal/errors"
	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/output"
	"github.com/eventlife/eventlife/internal/storage"
	"github.com/eventlife/eventlife/internal/timeutil"
)

// Community command flags.
var (
	chatPostFlagAs   string
	questionFlagDesc string
)

// chatCmd groups the chat feed commands.
var chatCmd = &cobra.Command{
	Use:   "chat [command]",
	Short: "Read and post to the chat feed",
	RunE:  runChatList,
}

var chatPostCmd = &cobra.Command{
	Use:   "post <message>",
	Short: "Post a chat message",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatPost,
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the chat feed",
	RunE:  runChatList,
}

// questionsCmd groups the Q&A commands.
var questionsCmd = &cobra.Command{
	Use:     "questions [command]",
	Aliases: []string{"q", "qa"},
	Short:   "Browse and ask questions",
	RunE:    runQuestionsList,
}

var questionsAskCmd = &cobra.Command{
	Use:   "ask <title>",
	Short: "Ask a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsAsk,
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions, newest first",
	RunE:  runQuestionsList,
}

var questionsReplyCmd = &cobra.Command{
	Use:   "reply <id>",
	Short: "Record a reply to a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsReply,
}

func init() {
	chatPostCmd.Flags().StringVar(&chatPostFlagAs, "as", "",
		"Author name (defaults to the OS user)")
	questionsAskCmd.Flags().StringVar(&questionFlagDesc, "desc", "",
		"Longer description")

	chatCmd.AddCommand(chatPostCmd)
	chatCmd.AddCommand(chatListCmd)
	questionsCmd.AddCommand(questionsAskCmd)
	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsReplyCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(questionsCmd)
}

// authorName resolves the author for posts.
func authorName() string {
	if chatPostFlagAs != "" {
		return chatPostFlagAs
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "anonymous"
}

func runChatPost(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	msg := &model.ChatMessage{
		Author:  authorName(),
		Message: args[0],
	}
	if err := storage.NewChatRepo(db).Post(msg); err != nil {
		return err
	}

	fmtr.Printf("Posted as %s\n", fmtr.Bold(msg.Author))
	return nil
}

func runChatList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	messages, err := storage.NewChatRepo(db).List()
	if err != nil {
		return err
	}

	if fmtr.Format == output.FormatJSON {
		return fmtr.JSON(messages)
	}

	if len(messages) == 0 {
		fmtr.Println("No chat messages yet.")
		return nil
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	for _, msg := range messages {
		fmtr.Printf("%s %s: %s\n",
			fmtr.Dim(timeutil.FormatClock(msg.Timestamp, loc)),
			fmtr.Bold(msg.Author), msg.Message)
	}
	return nil
}

func runQuestionsAsk(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	q := &model.Question{
		Title:       args[0],
		Description: questionFlagDesc,
		Author:      authorName(),
	}
	if err := storage.NewQuestionRepo(db).Create(q); err != nil {
		return err
	}

	fmtr.Printf("Asked: %s\n", fmtr.Bold(q.Title))
	fmtr.Printf("  id: %s\n", q.ID)
	return nil
}

func runQuestionsList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	questions, err := storage.NewQuestionRepo(db).List()
	if err != nil {
		return err
	}

	if fmtr.Format == output.FormatJSON {
		return fmtr.JSON(questions)
	}

	if len(questions) == 0 {
		fmtr.Println("No questions yet.")
		return nil
	}

	for _, q := range questions {
		fmtr.Printf("%s  %s\n", fmtr.Bold(q.Title),
			fmtr.Dim(fmt.Sprintf("(%d replies)", q.Replies)))
		if q.Description != "" {
			fmtr.Printf("  %s\n", q.Description)
		}
		fmtr.Println(fmtr.Dim("  " + q.ID))
	}
	return nil
}

func runQuestionsReply(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := storage.NewQuestionRepo(db)
	if err := repo.IncrementReplies(args[0]); err != nil {
		if storage.IsErrKeyNotFound(err) {
			return apperrors.NewUserError(
				fmt.Sprintf("no question with id %q", args[0]),
				"list ids with: eventlife questions list")
		}
		return err
	}

	fmtr.Println("Reply recorded")
	return nil
}
