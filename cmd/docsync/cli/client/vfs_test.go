package client

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/docsync/pkg/db/models"
	"github.com/mwantia/docsync/pkg/deadline"
	"github.com/mwantia/docsync/pkg/vault"
)

func TestFlagMarks(t *testing.T) {
	assert.Equal(t, "---", flagMarks(vault.Entry{}))
	assert.Equal(t, "c-*", flagMarks(vault.Entry{Record: models.Record{Completed: true, Starred: true}}))
	assert.Equal(t, "cr-", flagMarks(vault.Entry{Record: models.Record{Completed: true, Reviewed: true}}))
}

func TestEntryPrinter(t *testing.T) {
	folders := []vault.FolderNode{{Path: "/A/sub", Name: "sub"}}
	files := []vault.Entry{{
		Record: models.Record{
			Path:       "/A/upload_x__report.pdf",
			Size:       2048,
			UploadedBy: "Juan",
			Reviewed:   true,
		},
		DisplayName: "report.pdf",
		Deadline:    deadline.Status{Level: deadline.Urgent, DaysLeft: 1},
	}}

	var short bytes.Buffer
	require.NoError(t, entryPrinter{}.print(&short, folders, files))
	assert.Equal(t, "sub/\nreport.pdf\n", short.String())

	var long bytes.Buffer
	require.NoError(t, entryPrinter{long: true, human: true}.print(&long, folders, files))
	assert.Contains(t, long.String(), "-r-")
	assert.Contains(t, long.String(), "2.0 kB")
	assert.Contains(t, long.String(), "urgent (1d)")
	assert.Contains(t, long.String(), "/A/upload_x__report.pdf")
}

func TestNewVfsCommand(t *testing.T) {
	cmd := NewVfsCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"ls", "stat", "search", "put", "get", "rm", "mv", "rename", "mkdir", "flag"}, names)
}
