package cli

import (
	"errors"
	"fmt"

	"notes-app/src/client"
	"notes-app/src/view"

	"github.com/spf13/cobra"
)

func (a *app) listCmd() *cobra.Command {
	var section, search, tag, sortKey string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List notes of a section",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := a.settings()

			filter := view.DefaultFilter(settings.DefaultSection)
			if section != "" {
				filter.Section = view.Section(section)
			}
			if !filter.Section.IsValid() {
				return fmt.Errorf("unknown section %q (active, favorites, trash)", filter.Section)
			}
			filter.Search = search
			filter.Tag = tag
			filter.Sort = view.SortKey(sortKey)
			if !filter.Sort.IsValid() {
				return fmt.Errorf("unknown sort key %q (dateModified, dateCreated, title)", sortKey)
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			notes, err := c.Fetch(cmd.Context(), filter.Section)
			if err != nil {
				return err
			}
			a.log.WithField("count", len(notes)).Debug("notes fetched")

			shown := view.Project(notes, filter)
			renderList(cmd.OutOrStdout(), shown, filter, settings)
			return nil
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "", "active, favorites or trash (default from settings)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "case-insensitive search in title and body")
	cmd.Flags().StringVarP(&tag, "tag", "t", view.TagAll, "only notes carrying this tag")
	cmd.Flags().StringVar(&sortKey, "sort", string(view.SortDateModified), "dateModified, dateCreated or title")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			note, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderNote(cmd.OutOrStdout(), note, a.settings())
			return nil
		},
	}
}

func (a *app) newCmd() *cobra.Command {
	var title, body string
	var tags []string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			note, err := c.Create(cmd.Context(), title, body, tags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note created: %s\n", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&body, "body", "", "note body")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag, repeatable; the first is the primary tag")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var title, body string
	var tags []string
	var clearTags bool

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change title, body or tags of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req client.UpdateRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("body") {
				req.Body = &body
			}
			switch {
			case clearTags && flags.Changed("tag"):
				return errors.New("--tag and --clear-tags are mutually exclusive")
			case clearTags:
				empty := []string{}
				req.Tags = &empty
			case flags.Changed("tag"):
				req.Tags = &tags
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			if _, err := c.Update(cmd.Context(), args[0], req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Note updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new body")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replace tags, repeatable")
	cmd.Flags().BoolVar(&clearTags, "clear-tags", false, "remove every tag")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Move a note to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.SoftDelete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Note moved to trash")
			return nil
		},
	}
}

func (a *app) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore ID",
		Short: "Move a note out of the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if _, err := c.Restore(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Note restored successfully")
			return nil
		},
	}
}

func (a *app) favCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fav ID",
		Short: "Toggle the favorite flag of an active note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}

			// ゴミ箱のノートには復元と完全削除だけを提供する。
			// 取得と切り替えは別リクエストなので、この確認は目安にすぎない
			current, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if current.IsTrashed {
				return errors.New("note is in the trash, restore it first")
			}

			note, err := c.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if note.IsFavorite {
				fmt.Fprintln(cmd.OutOrStdout(), "Added to favorites")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Removed from favorites")
			}
			return nil
		},
	}
}

func (a *app) purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge ID",
		Short: "Permanently delete a note from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}

			// 確認後に別の端末で復元される可能性はある。サーバーはどちらの状態でも削除を受け付ける
			current, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !current.IsTrashed {
				return errors.New("only notes in the trash can be permanently deleted, run `notectl rm` first")
			}

			if err := c.PermanentlyDelete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Note permanently deleted")
			return nil
		},
	}
}

func (a *app) tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tags used by active notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			notes, err := c.ListActive(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.TagAll)
			for _, tag := range view.Tags(notes) {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		},
	}
}
