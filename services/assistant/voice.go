package assistant

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"servswap/models"
	"servswap/services/apperr"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

const (
	MaxVoiceSize    = 5 * 1024 * 1024
	DefaultLanguage = "en-US"
)

var errNotWAV = errors.New("audio must be a PCM WAV file")

// wavSampleRate validates a RIFF/WAVE header and returns its sample rate.
func wavSampleRate(data []byte) (int32, error) {
	if len(data) < 44 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return 0, errNotWAV
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 1 {
		return 0, errNotWAV
	}
	return int32(binary.LittleEndian.Uint32(data[24:28])), nil
}

func (s *DefaultAssistantService) AskVoice(ctx context.Context, userID string, wav []byte, language string) (*models.AssistantResponse, error) {
	if s.Speech == nil {
		return nil, apperr.Invalid("voice questions are not available")
	}
	if len(wav) == 0 || len(wav) > MaxVoiceSize {
		return nil, apperr.Invalid("audio must be between 1 byte and %d MB", MaxVoiceSize/(1024*1024))
	}
	if _, err := wavSampleRate(wav); err != nil {
		return nil, apperr.Invalid("%s", err.Error())
	}
	if language == "" {
		language = DefaultLanguage
	}

	transcript, err := s.Speech.Transcribe(ctx, wav, language)
	if err != nil {
		return nil, apperr.Internal("speech recognition failed", err)
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, apperr.Invalid("could not understand the recording, please try again")
	}

	resp, err := s.Ask(ctx, userID, transcript)
	if err != nil {
		return nil, err
	}
	resp.Transcript = transcript
	return resp, nil
}

// SpeechTranscriber recognizes LINEAR16 audio with Google Cloud Speech.
type SpeechTranscriber struct {
	client *speech.Client
}

func NewSpeechTranscriber(ctx context.Context, opts ...option.ClientOption) (*SpeechTranscriber, error) {
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &SpeechTranscriber{client: client}, nil
}

func (t *SpeechTranscriber) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	rate, err := wavSampleRate(wav)
	if err != nil {
		return "", err
	}
	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: rate,
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: wav},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	return strings.Join(parts, " "), nil
}

func (t *SpeechTranscriber) Close() error {
	return t.client.Close()
}
