// Package archive is the bot's unified data layer: JSON persistence on disk
// fronted by an in-process cache with explicit invalidation. It owns the
// identity document, persona prompts, channel->persona bindings, expression
// pools and the music preference knowledge base.
package archive

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"sambot/internal/models"
)

const defaultPrompt = "Você é a Sam, uma assistente virtual divertida e especialista em jogos e música."

const (
	cacheKeyIdentity    = "identity"
	cacheKeyChannels    = "channels"
	cacheKeyExpressions = "expressions"
	cacheKeyNLP         = "nlp"
	cacheKeyPromptFmt   = "prompt:%s"
)

// Archive persists bot data as flat JSON documents. Disk writes are guarded
// by a mutex; reads go through the cache until InvalidateAll.
type Archive struct {
	root    string
	folders map[string]string
	cache   *gocache.Cache
	mu      sync.Mutex // serializes the file write path
}

// New creates the archive rooted at dataDir, creating the folder layout.
func New(dataDir string) (*Archive, error) {
	a := &Archive{
		root:  dataDir,
		cache: gocache.New(gocache.NoExpiration, 0),
		folders: map[string]string{
			"config":      filepath.Join(dataDir, "Config"),
			"prompts":     filepath.Join(dataDir, "Prompts"),
			"knowledge":   filepath.Join(dataDir, "Knowledge"),
			"persistence": filepath.Join(dataDir, "Persistence"),
		},
	}

	for _, folder := range a.folders {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data folder %s: %w", folder, err)
		}
	}
	return a, nil
}

// readJSON decodes a JSON document into out, leaving out untouched when the
// file does not exist.
func (a *Archive) readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// saveJSON rewrites a JSON document wholesale under the write lock.
func (a *Archive) saveJSON(path string, data interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	encoded, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create parent dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// GetIdentity returns the bot's identity document, with a minimal default
// when the file is missing.
func (a *Archive) GetIdentity() models.Identity {
	if cached, found := a.cache.Get(cacheKeyIdentity); found {
		return cached.(models.Identity)
	}

	var identity models.Identity
	path := filepath.Join(a.folders["config"], "identity.json")
	if err := a.readJSON(path, &identity); err != nil {
		log.Printf("⚠️ [ARCHIVE] Erro ao ler identidade: %v", err)
	}
	if identity.Name == "" {
		identity.Name = "SamBot"
	}

	a.cache.Set(cacheKeyIdentity, identity, gocache.NoExpiration)
	return identity
}

// GetPrompt returns the system prompt for a persona. A missing persona falls
// back to "padrao" with a warning; a missing "padrao" falls back to the
// built-in default. Never errors.
func (a *Archive) GetPrompt(persona string) string {
	if persona == "" {
		persona = "padrao"
	}
	persona = strings.TrimSuffix(persona, ".txt")

	cacheKey := fmt.Sprintf(cacheKeyPromptFmt, persona)
	if cached, found := a.cache.Get(cacheKey); found {
		return cached.(string)
	}

	path := filepath.Join(a.folders["prompts"], persona+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if persona != "padrao" {
			log.Printf("⚠️ [ARCHIVE] Persona %s não encontrada, usando 'padrao'.", persona)
			return a.GetPrompt("padrao")
		}
		return defaultPrompt
	}

	content := strings.TrimSpace(string(data))
	a.cache.Set(cacheKey, content, gocache.NoExpiration)
	return content
}

// ListPersonas lists the available persona names.
func (a *Archive) ListPersonas() []string {
	entries, err := os.ReadDir(a.folders["prompts"])
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, strings.TrimSuffix(e.Name(), ".txt"))
		}
	}
	return names
}

// LoadActiveChannels returns the channel->persona bindings.
func (a *Archive) LoadActiveChannels() map[string]string {
	if cached, found := a.cache.Get(cacheKeyChannels); found {
		return cached.(map[string]string)
	}

	channels := make(map[string]string)
	path := filepath.Join(a.folders["config"], "channels.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filepath.Join(a.folders["persistence"], "channels.json")
	}
	if err := a.readJSON(path, &channels); err != nil {
		log.Printf("⚠️ [ARCHIVE] Erro ao ler canais ativos: %v", err)
	}

	a.cache.Set(cacheKeyChannels, channels, gocache.NoExpiration)
	return channels
}

// SaveActiveChannels rewrites the binding document wholesale and refreshes
// the cache.
func (a *Archive) SaveActiveChannels(channels map[string]string) error {
	if channels == nil {
		return fmt.Errorf("bindings nil")
	}
	path := filepath.Join(a.folders["config"], "channels.json")
	if err := a.saveJSON(path, channels); err != nil {
		return err
	}
	a.cache.Set(cacheKeyChannels, channels, gocache.NoExpiration)
	return nil
}

// SetChannelPersona binds a persona to a channel (admin operation).
func (a *Archive) SetChannelPersona(channelID, persona string) error {
	channels := a.LoadActiveChannels()
	updated := make(map[string]string, len(channels)+1)
	for k, v := range channels {
		updated[k] = v
	}
	updated[channelID] = persona
	return a.SaveActiveChannels(updated)
}

// ClearChannelPersona removes a channel binding (admin operation).
func (a *Archive) ClearChannelPersona(channelID string) error {
	channels := a.LoadActiveChannels()
	updated := make(map[string]string, len(channels))
	for k, v := range channels {
		if k != channelID {
			updated[k] = v
		}
	}
	return a.SaveActiveChannels(updated)
}

// GetExpressions returns the reaction expression pools
// (Knowledge/expressoes_data.json).
func (a *Archive) GetExpressions() map[string][]string {
	if cached, found := a.cache.Get(cacheKeyExpressions); found {
		return cached.(map[string][]string)
	}

	expressions := make(map[string][]string)
	path := filepath.Join(a.folders["knowledge"], "expressoes_data.json")
	if err := a.readJSON(path, &expressions); err != nil {
		log.Printf("⚠️ [ARCHIVE] Erro ao ler expressões: %v", err)
	}

	a.cache.Set(cacheKeyExpressions, expressions, gocache.NoExpiration)
	return expressions
}

// nlpData is the free-form knowledge document holding music preferences.
type nlpData struct {
	MusicPreferences map[string][]string `json:"music_preferences"`
}

func (a *Archive) loadNLP() nlpData {
	if cached, found := a.cache.Get(cacheKeyNLP); found {
		return cached.(nlpData)
	}

	var data nlpData
	path := filepath.Join(a.folders["knowledge"], "nlp_data.json")
	if err := a.readJSON(path, &data); err != nil {
		log.Printf("⚠️ [ARCHIVE] Erro ao ler nlp_data: %v", err)
	}
	if data.MusicPreferences == nil {
		data.MusicPreferences = make(map[string][]string)
	}

	a.cache.Set(cacheKeyNLP, data, gocache.NoExpiration)
	return data
}

// SaveMusicPreference records one musical taste for a user, skipping
// duplicates.
func (a *Archive) SaveMusicPreference(userID, genreOrArtist string) error {
	data := a.loadNLP()

	for _, existing := range data.MusicPreferences[userID] {
		if existing == genreOrArtist {
			return nil
		}
	}
	data.MusicPreferences[userID] = append(data.MusicPreferences[userID], genreOrArtist)

	path := filepath.Join(a.folders["knowledge"], "nlp_data.json")
	if err := a.saveJSON(path, data); err != nil {
		return err
	}
	a.cache.Set(cacheKeyNLP, data, gocache.NoExpiration)
	log.Printf("💾 [ARCHIVE] Gosto musical '%s' salvo para o usuário %s", genreOrArtist, userID)
	return nil
}

// GetUserMusicContext formats the user's known musical tastes for the prompt.
func (a *Archive) GetUserMusicContext(userID string) string {
	data := a.loadNLP()
	prefs := data.MusicPreferences[userID]
	if len(prefs) == 0 {
		return ""
	}
	return "O utilizador gosta de: " + strings.Join(prefs, ", ") + "."
}

// InvalidateAll clears the cache and forces fresh disk reads (the "reload"
// admin operation).
func (a *Archive) InvalidateAll() {
	a.cache.Flush()
	log.Println("♻️ [ARCHIVE] Cache limpo com sucesso.")
}
