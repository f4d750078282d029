package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type scriptedDriver struct {
	answers []string
	asked   []string
	err     error
}

func (d *scriptedDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	if d.err != nil {
		return "", d.err
	}
	answer := d.answers[0]
	d.answers = d.answers[1:]
	return answer, nil
}

func (d *scriptedDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	return cfg.Default, nil
}

func (d *scriptedDriver) Select(ctx context.Context, cfg SelectConfig) (string, error) {
	return cfg.Options[0], nil
}

func (d *scriptedDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	return cfg.Default, nil
}

func TestFillFieldsAsksOnlyUnset(t *testing.T) {
	driver := &scriptedDriver{answers: []string{"123", ""}}

	values, err := FillFields(context.Background(), driver, []string{"name", "ref", "firma"}, map[string]string{"name": "Ana"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"name": "Ana", "ref": "123", "firma": ""}, values)
	require.Equal(t, []string{"Value for 'ref':", "Value for 'firma':"}, driver.asked)
}

func TestFillFieldsAborted(t *testing.T) {
	driver := &scriptedDriver{err: ErrAborted}

	_, err := FillFields(context.Background(), driver, []string{"name"}, nil)
	require.ErrorIs(t, err, ErrAborted)
}
