package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runActor(t *testing.T, args ...string) (uuid.UUID, error) {
	t.Helper()
	var (
		got    uuid.UUID
		gotErr error
	)
	app := &cli.App{
		Name: "matchctl",
		Commands: []*cli.Command{{
			Name:  "probe",
			Flags: []cli.Flag{actorFlag},
			Action: func(c *cli.Context) error {
				got, gotErr = parseActor(c)
				return nil
			},
		}},
	}
	require.NoError(t, app.Run(append([]string{"matchctl", "probe"}, args...)))
	return got, gotErr
}

func TestParseActorDefaultsToNil(t *testing.T) {
	id, err := runActor(t)
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, id)
}

func TestParseActorAcceptsUUID(t *testing.T) {
	want := uuid.New()
	id, err := runActor(t, "--actor", want.String())
	require.NoError(t, err)
	require.Equal(t, want, id)
}

func TestParseActorRejectsGarbage(t *testing.T) {
	_, err := runActor(t, "--actor", "not-a-uuid")
	require.Error(t, err)
}

func TestCommandsRequireQuoteID(t *testing.T) {
	for _, cmd := range []*cli.Command{matchesCmd, assignCmd} {
		var required bool
		for _, flag := range cmd.Flags {
			if sf, ok := flag.(*cli.StringFlag); ok && sf.Name == "quote" {
				required = sf.Required
			}
		}
		require.Truef(t, required, "%s should require --quote", cmd.Name)
	}
}
