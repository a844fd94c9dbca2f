package system

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/config"
	lerrors "github.com/julianstephens/lifeos/internal/errors"
)

func TestNotifyCmd(t *testing.T) {
	tests := []struct {
		name    string
		cmd     NotifyCmd
		want    string
		wantErr error
	}{
		{
			name: "sends through the log transport",
			cmd:  NotifyCmd{Destination: "todo", Text: []string{"hello", "there"}},
			want: "[#todo]\nhello there\n",
		},
		{
			name: "name match ignores case",
			cmd:  NotifyCmd{Destination: "DONE", Text: []string{"hi"}},
			want: "[#done]\nhi\n",
		},
		{
			name: "dry run prints without sending",
			cmd:  NotifyCmd{Destination: "todo", Text: []string{"hi"}, DryRun: true},
			want: "[DryRun] #todo: hi",
		},
		{
			name:    "unknown destination",
			cmd:     NotifyCmd{Destination: "nowhere", Text: []string{"hi"}},
			wantErr: lerrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			ctx := &cli.Context{Config: config.Defaults(), Out: out}

			err := tt.cmd.Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output %q does not contain %q", out.String(), tt.want)
			}
			if tt.cmd.DryRun && strings.Contains(out.String(), "[#") {
				t.Errorf("dry run delivered a message: %q", out.String())
			}
		})
	}
}
