package voice

import "encoding/json"

// Wire types for the bidirectional live endpoint. Audio travels as base64
// PCM: 16 kHz up, 24 kHz down.

const (
	CaptureSampleRate  = 16000
	PlaybackSampleRate = 24000
	captureMimeType    = "audio/pcm;rate=16000"
)

type clientMessage struct {
	Setup         *setupPayload  `json:"setup,omitempty"`
	RealtimeInput *realtimeInput `json:"realtimeInput,omitempty"`
	ToolResponse  *toolResponse  `json:"toolResponse,omitempty"`
}

type setupPayload struct {
	Model             string   `json:"model"`
	SystemInstruction *content `json:"systemInstruction,omitempty"`
	Tools             []tool   `json:"tools,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type realtimeInput struct {
	MediaChunks []blob `json:"mediaChunks"`
}

type toolResponse struct {
	FunctionResponses []functionResponse `json:"functionResponses"`
}

type functionResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type tool struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type functionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *schema `json:"parameters,omitempty"`
}

type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Items       *schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
	ToolCall      *toolCall      `json:"toolCall,omitempty"`
}

type serverContent struct {
	ModelTurn    *content `json:"modelTurn,omitempty"`
	Interrupted  bool     `json:"interrupted,omitempty"`
	TurnComplete bool     `json:"turnComplete,omitempty"`
}

type toolCall struct {
	FunctionCalls []functionCall `json:"functionCalls"`
}

type functionCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Events pushed to the storefront client over its socket.

type ClientEvent struct {
	Type    string        `json:"type"`
	State   string        `json:"state,omitempty"`
	Audio   *AudioChunk   `json:"audio,omitempty"`
	Basket  *BasketNotice `json:"basket,omitempty"`
	Message string        `json:"message,omitempty"`
}

// AudioChunk tells the client exactly when to start a decoded buffer on
// its playback clock.
type AudioChunk struct {
	ID         int     `json:"id"`
	Data       string  `json:"data"`
	SampleRate int     `json:"sampleRate"`
	StartTime  float64 `json:"startTime"`
	Duration   float64 `json:"duration"`
}

// BasketNotice is the transient confirmation shown after a voice-driven
// basket mutation. The client opens the cart drawer and auto-dismisses.
type BasketNotice struct {
	Items         []AddedItem `json:"items"`
	OpenCart      bool        `json:"openCart"`
	AutoDismissMs int         `json:"autoDismissMs"`
}

type AddedItem struct {
	ProductID string  `json:"productId"`
	NameEn    string  `json:"nameEn"`
	NameAr    string  `json:"nameAr"`
	Quantity  float64 `json:"quantity"`
}
