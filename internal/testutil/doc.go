// SPDX-License-Identifier: MPL-2.0

// Package testutil holds test helpers that fail the test on error, so test
// bodies stay focused on the behaviour under test.
package testutil
