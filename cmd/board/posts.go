// ABOUTME: CLI commands for board post operations.
// ABOUTME: Provides list, view, create, edit, and delete subcommands.
package main

import (
	"bufio"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/j0chan/sesac-semi/internal/posts"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage board posts",
	Long:  "List, read, create, edit, and delete posts.",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	RunE:  runPostsList,
}

var postsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Read a single post",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsView,
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Long:  "Create a new post. With --image, the file is uploaded before the post is written.",
	RunE:  runPostsCreate,
}

var postsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a post",
	Long:  "Update a post. Omitted fields keep their current value.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsEdit,
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsDelete,
}

// Flags
var (
	postsPage       int
	postsSize       int
	postsTitle      string
	postsContent    string
	postsImagePath  string
	postsClearImage bool
	postsYes        bool
)

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsViewCmd)
	postsCmd.AddCommand(postsCreateCmd)
	postsCmd.AddCommand(postsEditCmd)
	postsCmd.AddCommand(postsDeleteCmd)

	postsListCmd.Flags().IntVar(&postsPage, "page", 1, "Page number")
	postsListCmd.Flags().IntVar(&postsSize, "size", 0, "Posts per page (default from config)")

	postsCreateCmd.Flags().StringVar(&postsTitle, "title", "", "Post title")
	postsCreateCmd.Flags().StringVar(&postsContent, "content", "", "Post body")
	postsCreateCmd.Flags().StringVar(&postsImagePath, "image", "", "Path of an image to attach")

	postsEditCmd.Flags().StringVar(&postsTitle, "title", "", "New title")
	postsEditCmd.Flags().StringVar(&postsContent, "content", "", "New body")
	postsEditCmd.Flags().StringVar(&postsImagePath, "image", "", "Path of a replacement image")
	postsEditCmd.Flags().BoolVar(&postsClearImage, "clear-image", false, "Remove the attached image")

	postsDeleteCmd.Flags().BoolVar(&postsYes, "yes", false, "Skip the confirmation prompt")
}

func parsePostID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}

func runPostsList(cmd *cobra.Command, args []string) error {
	size := postsSize
	if size <= 0 {
		size = globalConfig.UI.PageSize
	}
	if postsPage <= 0 {
		postsPage = 1
	}

	rows, hasNext, err := globalPosts.Page(cmd.Context(), postsPage, size)
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}

	if len(rows) == 0 {
		if postsPage == 1 {
			fmt.Println("No posts yet.")
		} else {
			fmt.Printf("No posts on page %d.\n", postsPage)
		}
		return nil
	}

	for _, post := range rows {
		marker := " "
		if post.ImageKey != nil {
			marker = "*"
		}
		fmt.Printf("%4d %s %s\n", post.ID, marker, post.Title)
	}
	if hasNext {
		fmt.Printf("\nMore posts: board posts list --page %d\n", postsPage+1)
	}
	return nil
}

func runPostsView(cmd *cobra.Command, args []string) error {
	id, err := parsePostID(args[0])
	if err != nil {
		return err
	}

	post, err := globalPosts.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to read post: %w", err)
	}

	fmt.Printf("#%d %s\n\n%s\n", post.ID, post.Title, post.Content)
	if post.ImageKey != nil {
		url, err := globalUploads.PresignGet(cmd.Context(), *post.ImageKey)
		if err != nil {
			fmt.Printf("\n[image unavailable: %v]\n", err)
			return nil
		}
		fmt.Printf("\n[image] %s\n", url)
	}
	return nil
}

// uploadImage validates and uploads a local file, returning the storage key.
// Nothing is written to the board until this succeeds.
func uploadImage(cmd *cobra.Command, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if err := globalUploads.ValidateFile(contentType, info.Size()); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}

	key, err := globalUploads.Upload(cmd.Context(), filepath.Base(path), contentType, data)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return key, nil
}

func runPostsCreate(cmd *cobra.Command, args []string) error {
	if err := posts.ValidateDraft(postsTitle, postsContent); err != nil {
		return err
	}

	draft := posts.Draft{Title: &postsTitle, Content: &postsContent}
	if postsImagePath != "" {
		key, err := uploadImage(cmd, postsImagePath)
		if err != nil {
			return err
		}
		draft.ImageKey = &key
	}

	post, err := globalPosts.Create(cmd.Context(), draft)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	fmt.Printf("Post created (id %d)\n", post.ID)
	return nil
}

func runPostsEdit(cmd *cobra.Command, args []string) error {
	id, err := parsePostID(args[0])
	if err != nil {
		return err
	}
	if postsImagePath != "" && postsClearImage {
		return fmt.Errorf("--image and --clear-image are mutually exclusive")
	}

	current, err := globalPosts.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to read post: %w", err)
	}

	title := current.Title
	if cmd.Flags().Changed("title") {
		title = postsTitle
	}
	content := current.Content
	if cmd.Flags().Changed("content") {
		content = postsContent
	}
	if err := posts.ValidateDraft(title, content); err != nil {
		return err
	}

	draft := posts.Draft{Title: &title, Content: &content, ImageKey: current.ImageKey}
	switch {
	case postsClearImage:
		draft.ImageKey = nil
	case postsImagePath != "":
		key, err := uploadImage(cmd, postsImagePath)
		if err != nil {
			return err
		}
		draft.ImageKey = &key
	}

	post, err := globalPosts.Update(cmd.Context(), id, draft)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	fmt.Printf("Post %d updated\n", post.ID)
	return nil
}

func runPostsDelete(cmd *cobra.Command, args []string) error {
	id, err := parsePostID(args[0])
	if err != nil {
		return err
	}

	if !postsYes {
		fmt.Printf("Delete post %d? [y/N] ", id)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := globalPosts.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	fmt.Printf("Post %d deleted\n", id)
	return nil
}
