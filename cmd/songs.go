package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jsphweid/pianodiff/file"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(songsCmd)
}

var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "Lists registered songs",
	Long:  `Lists registered songs with their segment and attempt counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		songs, err := file.DefaultSongs().List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(songs) == 0 {
			fmt.Fprintln(out, "No songs yet. Register one with: pianodiff setup --song <id> --reference <file.mid>")
			return nil
		}
		for _, s := range songs {
			ref := ""
			if !s.HasReference {
				ref = " (no reference)"
			}
			fmt.Fprintf(out, "%-20s segments=%d attempts=%d updated %s%s\n",
				s.SongID, s.Segments, s.Attempts, humanize.Time(s.UpdatedAt), ref)
		}
		return nil
	},
}
