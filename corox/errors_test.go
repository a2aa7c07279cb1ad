// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapfPreservesSentinelForErrorsIs(t *testing.T) {
	err := wrapf(ErrInvalidConfig, "bad value %d", 7)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "bad value 7")
}

func TestIsAcceptAbortedRecognizesClosedListener(t *testing.T) {
	assert.True(t, isAcceptAborted(net.ErrClosed))
	assert.True(t, isAcceptAborted(ErrAcceptorClosed))
	assert.False(t, isAcceptAborted(errors.New("transient")))
	assert.False(t, isAcceptAborted(nil))
}
