package tests_test

import (
	"bytes"
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"

	"github.com/mycophonic/iamfparam/flac"
	"github.com/mycophonic/iamfparam/tests/testutils"
)

func TestLabels(t *testing.T) {
	t.Parallel()

	testCase := testutils.Setup(t)
	testCase.Description = "demixed channel labels of layer transitions"

	testCase.SubTests = []*test.Case{
		{
			Description: "mono to stereo",
			Command:     test.Command("labels", "--from", "mono", "--to", "stereo"),
			Expected:    test.Expects(expect.ExitCodeSuccess, nil, expect.Equals("D_R2\t2\n")),
		},
		{
			Description: "stereo to 5.1.2",
			Command:     test.Command("labels", "--from", "stereo", "--to", "5.1.2"),
			Expected: test.Expects(expect.ExitCodeSuccess, nil,
				expect.Equals("D_L3\t0\nD_R3\t2\nD_Ls5\t3\nD_Rs5\t4\n")),
		},
		{
			Description: "reserved layout",
			Command:     test.Command("labels", "--to", "9.1.6"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, []error{errors.New("reserved loudspeaker layout")}, nil),
		},
	}

	testCase.Run(t)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	testCase := testutils.Setup(t)
	testCase.Description = "parameter block generation from a session"

	testCase.SubTests = []*test.Case{
		{
			Description: "matching recon gains",
			Setup: func(data test.Data, helpers test.Helpers) {
				writeSession(data, helpers, matchingGains)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("generate", data.Temp().Path("session.yaml"))
			},
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.Contains(
				"parameter_id=200 kind=mix_gain start=0 end=8",
				"animation=linear start=-512 end=0",
				"parameter_id=100 kind=recon_gain start=8 end=16",
				"layer0={} layer1={0:128,2:128,3:128,4:128}",
			)),
		},
		{
			Description: "every mismatching position is reported",
			Setup: func(data test.Data, helpers test.Helpers) {
				writeSession(data, helpers, mismatchedGains)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("generate", data.Temp().Path("session.yaml"))
			},
			Expected: test.Expects(expect.ExitCodeGenericFail, []error{errors.New("positions [3 7]")}, nil),
		},
		{
			Description: "override emits user gains",
			Setup: func(data test.Data, helpers test.Helpers) {
				writeSession(data, helpers, mismatchedGains)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("generate", "--override", "--json", data.Temp().Path("session.yaml"))
			},
			Expected: test.Expects(expect.ExitCodeSuccess, nil, expect.Contains(
				`"kind": "recon_gain"`,
				`"recon_gain_flag": 157`,
				`"7": 9`,
			)),
		},
	}

	testCase.Run(t)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	input := planar(2, 1000, 1234)

	testCase := testutils.Setup(t)
	testCase.Description = "frame by frame FLAC substream encoding"
	testCase.Setup = func(data test.Data, helpers test.Helpers) {
		if err := writeWAV(data.Temp().Path("input.wav"), input); err != nil {
			helpers.T().Log("writing input: " + err.Error())
			helpers.T().Fail()
		}
	}
	testCase.Command = func(data test.Data, helpers test.Helpers) test.TestableCommand {
		return helpers.Command("encode", "--frame", "256", "-o", data.Temp().Path("out.flac"),
			data.Temp().Path("input.wav"))
	}
	testCase.Expected = func(data test.Data, _ test.Helpers) *test.Expected {
		return &test.Expected{
			ExitCode: expect.ExitCodeSuccess,
			Output: func(_ string, t tig.T) {
				t.Helper()

				encoded, err := os.ReadFile(data.Temp().Path("out.flac"))
				if err != nil {
					t.Log("reading output: " + err.Error())
					t.Fail()

					return
				}

				decoded, err := flac.Decode(bytes.NewReader(encoded))
				if err != nil {
					t.Log("decoding output: " + err.Error())
					t.Fail()

					return
				}

				for ch := range input.Channels {
					if !slices.Equal(decoded.Channels[ch], input.Channels[ch]) {
						t.Log("decoded samples differ from input")
						t.Fail()

						return
					}
				}
			},
		}
	}

	testCase.Run(t)
}
