package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

func TestKeyDeterministic(t *testing.T) {
	req := models.Request{
		Task:       models.TaskReply,
		InputText:  "Thanks for the update.",
		ModelID:    "llama3",
		Parameters: map[string]string{"temperature": "0.2", "num_predict": "256"},
	}
	assert.Equal(t, Key(req), Key(req))
}

func TestKeyParameterOrderInvariant(t *testing.T) {
	a := models.Request{
		Task:       models.TaskReply,
		InputText:  "hello",
		ModelID:    "llama3",
		Parameters: map[string]string{"a": "1", "b": "2"},
	}
	b := models.Request{
		Task:       models.TaskReply,
		InputText:  "hello",
		ModelID:    "llama3",
		Parameters: map[string]string{"b": "2", "a": "1"},
	}
	assert.Equal(t, Key(a), Key(b))
}

func TestKeyWhitespaceNormalization(t *testing.T) {
	a := models.Request{Task: models.TaskSummary, InputText: "  hello   world\n", ModelID: "llama3"}
	b := models.Request{Task: models.TaskSummary, InputText: "hello world", ModelID: "llama3"}
	assert.Equal(t, Key(a), Key(b))
}

func TestKeyCasePreserved(t *testing.T) {
	a := models.Request{Task: models.TaskSummary, InputText: "Hello", ModelID: "llama3"}
	b := models.Request{Task: models.TaskSummary, InputText: "hello", ModelID: "llama3"}
	assert.NotEqual(t, Key(a), Key(b))
}

func TestKeySensitiveToTaskModelAndParams(t *testing.T) {
	base := models.Request{
		Task:       models.TaskReply,
		InputText:  "same text",
		ModelID:    "llama3",
		Parameters: map[string]string{"temperature": "0.2"},
	}

	otherTask := base
	otherTask.Task = models.TaskSummary
	assert.NotEqual(t, Key(base), Key(otherTask))

	otherModel := base
	otherModel.ModelID = "mistral"
	assert.NotEqual(t, Key(base), Key(otherModel))

	otherParams := base
	otherParams.Parameters = map[string]string{"temperature": "0.9"}
	assert.NotEqual(t, Key(base), Key(otherParams))
}

func TestKeyNoFieldBoundaryCollision(t *testing.T) {
	// model "ab" + text "c" must not collide with model "a" + text "bc"
	a := models.Request{Task: models.TaskReply, InputText: "c", ModelID: "ab"}
	b := models.Request{Task: models.TaskReply, InputText: "bc", ModelID: "a"}
	assert.NotEqual(t, Key(a), Key(b))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeText("  a\t b \n c  "))
	assert.Equal(t, "", NormalizeText("   \n\t "))
}
