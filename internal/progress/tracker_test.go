package progress_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repoverify/internal/progress"
)

const (
	testSubtestTemplateConstant = "%d_%s"
)

func TestTrackerForwardsMonotonicProgress(testInstance *testing.T) {
	testCases := []struct {
		name              string
		chunks            []string
		expectedSnapshots []progress.Snapshot
	}{
		{
			name: "carriage_return_updates",
			chunks: []string{
				"Enumerating objects: 5, done.\n",
				"Counting objects:  20% (1/5)\rCounting objects:  60% (3/5)\r",
				"Counting objects: 100% (5/5), done.\n",
			},
			expectedSnapshots: []progress.Snapshot{
				{ReceivedObjects: 1, TotalObjects: 5},
				{ReceivedObjects: 3, TotalObjects: 5},
				{ReceivedObjects: 5, TotalObjects: 5},
			},
		},
		{
			name: "split_line_across_writes",
			chunks: []string{
				"Receiving objects:  4",
				"5% (9/20), 1.20 MiB | 2.00 MiB/s\r",
			},
			expectedSnapshots: []progress.Snapshot{
				{ReceivedBytes: 1258291, ReceivedObjects: 9, TotalObjects: 20},
			},
		},
		{
			name: "server_sideband_without_sizes",
			chunks: []string{
				"Enumerating objects: 33, done.\n",
				"Counting objects:  50% (16/32)\rCounting objects: 100% (32/32), done.\n",
				"Compressing objects: 100% (30/30), done.\n",
				"Total 32 (delta 1), reused 0 (delta 0), pack-reused 0\n",
			},
			expectedSnapshots: []progress.Snapshot{
				{ReceivedBytes: 0, ReceivedObjects: 16, TotalObjects: 32},
				{ReceivedBytes: 0, ReceivedObjects: 32, TotalObjects: 32},
			},
		},
		{
			name: "other_phases_and_regressions_dropped",
			chunks: []string{
				"remote: Counting objects:  50% (2/4)\n",
				"remote: Compressing objects: 100% (3/3), done.\n",
				"remote: Counting objects:  25% (1/4)\n",
				"remote: Counting objects: 100% (4/8)\n",
				"remote: Counting objects: 100% (4/4), done.\n",
				"Total 4 (delta 0), reused 0 (delta 0), pack-reused 0\n",
			},
			expectedSnapshots: []progress.Snapshot{
				{ReceivedObjects: 2, TotalObjects: 4},
				{ReceivedObjects: 4, TotalObjects: 4},
			},
		},
		{
			name:              "no_progress_lines",
			chunks:            []string{"Total 0 (delta 0)\n", "done.\n"},
			expectedSnapshots: nil,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			recordingSink := &progress.RecordingSink{}
			tracker := progress.NewTracker(recordingSink)

			for _, chunk := range testCase.chunks {
				written, writeError := tracker.Write([]byte(chunk))
				require.NoError(testInstance, writeError)
				require.Equal(testInstance, len(chunk), written)
			}
			require.NoError(testInstance, tracker.Flush())

			snapshots := recordingSink.Snapshots()
			if testCase.expectedSnapshots == nil {
				require.Empty(testInstance, snapshots)
				_, notified := tracker.Last()
				require.False(testInstance, notified)
				return
			}
			require.Equal(testInstance, testCase.expectedSnapshots, snapshots)
			assertMonotonic(testInstance, snapshots)
		})
	}
}

func TestTrackerFlushProcessesTrailingLine(testInstance *testing.T) {
	recordingSink := &progress.RecordingSink{}
	tracker := progress.NewTracker(recordingSink)

	_, writeError := tracker.Write([]byte("Receiving objects: 100% (3/3), 2 KiB"))
	require.NoError(testInstance, writeError)
	require.Empty(testInstance, recordingSink.Snapshots())

	require.NoError(testInstance, tracker.Flush())
	last, notified := tracker.Last()
	require.True(testInstance, notified)
	require.Equal(testInstance, progress.Snapshot{ReceivedBytes: 2048, ReceivedObjects: 3, TotalObjects: 3}, last)
}

func TestLoggingSinkWritesDebugEntries(testInstance *testing.T) {
	logCore, observedLogs := observer.New(zap.DebugLevel)
	sink := progress.NewLoggingSink(zap.New(logCore))

	sink.Progress(1024, 2, 10)

	entries := observedLogs.All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, zap.DebugLevel, entries[0].Level)
	contextMap := entries[0].ContextMap()
	require.EqualValues(testInstance, 1024, contextMap["received_bytes"])
	require.EqualValues(testInstance, 2, contextMap["received_objects"])
	require.EqualValues(testInstance, 10, contextMap["total_objects"])
}

func assertMonotonic(testInstance *testing.T, snapshots []progress.Snapshot) {
	testInstance.Helper()
	for snapshotIndex := range snapshots {
		current := snapshots[snapshotIndex]
		require.LessOrEqual(testInstance, current.ReceivedObjects, current.TotalObjects)
		if snapshotIndex == 0 {
			continue
		}
		previous := snapshots[snapshotIndex-1]
		require.GreaterOrEqual(testInstance, current.ReceivedObjects, previous.ReceivedObjects)
		require.Equal(testInstance, previous.TotalObjects, current.TotalObjects)
	}
}
