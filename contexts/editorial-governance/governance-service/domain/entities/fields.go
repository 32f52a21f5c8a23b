package entities

import "strings"

// ProposedData is the plain key/value snapshot a revision carries. Keys are
// the content field names of the entry kind; media fields hold opaque
// references.
type ProposedData map[string]any

func (d ProposedData) Clone() ProposedData {
	if d == nil {
		return nil
	}
	out := make(ProposedData, len(d))
	for key, value := range d {
		if forms, ok := value.(map[string]string); ok {
			copied := make(map[string]string, len(forms))
			for k, v := range forms {
				copied[k] = v
			}
			out[key] = copied
			continue
		}
		out[key] = value
	}
	return out
}

// Text returns the string value stored under key, or "".
func (d ProposedData) Text(key string) string {
	value, _ := d[key].(string)
	return value
}

type FieldType string

const (
	FieldTypeText FieldType = "text"
	FieldTypeBool FieldType = "bool"
	FieldTypeMap  FieldType = "map"
)

const FieldInflectedForms = "inflected_forms"

type textField struct {
	key   string
	value func(*Entry) *string
}

type boolField struct {
	key   string
	value func(*Entry) *bool
}

type mediaField struct {
	textField
	contributor func(*Entry) *string
}

var dictionaryText = []textField{
	{"term", func(e *Entry) *string { return &e.Dictionary.Term }},
	{"meaning", func(e *Entry) *string { return &e.Dictionary.Meaning }},
	{"part_of_speech", func(e *Entry) *string { return &e.Dictionary.PartOfSpeech }},
	{"pronunciation_text", func(e *Entry) *string { return &e.Dictionary.PronunciationText }},
	{"audio_pronunciation", func(e *Entry) *string { return &e.Dictionary.AudioPronunciation }},
	{"audio_source", func(e *Entry) *string { return &e.Dictionary.AudioSource }},
	{"variant_type", func(e *Entry) *string { return &e.Dictionary.VariantType }},
	{"usage_notes", func(e *Entry) *string { return &e.Dictionary.UsageNotes }},
	{"etymology", func(e *Entry) *string { return &e.Dictionary.Etymology }},
	{"example_sentence", func(e *Entry) *string { return &e.Dictionary.ExampleSentence }},
	{"example_translation", func(e *Entry) *string { return &e.Dictionary.ExampleTranslation }},
	{"source_text", func(e *Entry) *string { return &e.Dictionary.SourceText }},
	{"photo", func(e *Entry) *string { return &e.Dictionary.Photo }},
	{"photo_source", func(e *Entry) *string { return &e.Dictionary.PhotoSource }},
	{"english_synonym", func(e *Entry) *string { return &e.Dictionary.EnglishSynonym }},
	{"ivatan_synonym", func(e *Entry) *string { return &e.Dictionary.IvatanSynonym }},
	{"english_antonym", func(e *Entry) *string { return &e.Dictionary.EnglishAntonym }},
	{"ivatan_antonym", func(e *Entry) *string { return &e.Dictionary.IvatanAntonym }},
}

var dictionaryBool = []boolField{
	{"audio_source_is_self_recorded", func(e *Entry) *bool { return &e.Dictionary.AudioSourceIsSelfRecorded }},
	{"term_source_is_self_knowledge", func(e *Entry) *bool { return &e.Dictionary.TermSourceIsSelfKnowledge }},
	{"photo_source_is_contributor_owned", func(e *Entry) *bool { return &e.Dictionary.PhotoSourceIsContributorOwned }},
}

var dictionaryMedia = []mediaField{
	{
		textField:   textField{"audio_pronunciation", func(e *Entry) *string { return &e.Dictionary.AudioPronunciation }},
		contributor: func(e *Entry) *string { return &e.AudioContributorID },
	},
	{
		textField:   textField{"photo", func(e *Entry) *string { return &e.Dictionary.Photo }},
		contributor: func(e *Entry) *string { return &e.PhotoContributorID },
	},
}

var folkloreText = []textField{
	{"title", func(e *Entry) *string { return &e.Folklore.Title }},
	{"content", func(e *Entry) *string { return &e.Folklore.Content }},
	{"category", func(e *Entry) *string { return (*string)(&e.Folklore.Category) }},
	{"municipality_source", func(e *Entry) *string { return &e.Folklore.MunicipalitySource }},
	{"source", func(e *Entry) *string { return &e.Folklore.Source }},
	{"media_url", func(e *Entry) *string { return &e.Folklore.MediaURL }},
	{"media_source", func(e *Entry) *string { return &e.Folklore.MediaSource }},
	{"copyright_usage", func(e *Entry) *string { return &e.Folklore.CopyrightUsage }},
	{"variant_type", func(e *Entry) *string { return &e.Folklore.VariantType }},
}

var folkloreBool = []boolField{
	{"self_knowledge", func(e *Entry) *bool { return &e.Folklore.SelfKnowledge }},
	{"self_produced_media", func(e *Entry) *bool { return &e.Folklore.SelfProducedMedia }},
}

var folkloreMedia = []mediaField{
	{
		textField:   textField{"media_url", func(e *Entry) *string { return &e.Folklore.MediaURL }},
		contributor: func(e *Entry) *string { return &e.MediaContributorID },
	},
}

func textFieldsFor(kind EntryKind) []textField {
	if kind == EntryKindFolklore {
		return folkloreText
	}
	return dictionaryText
}

func boolFieldsFor(kind EntryKind) []boolField {
	if kind == EntryKindFolklore {
		return folkloreBool
	}
	return dictionaryBool
}

func mediaFieldsFor(kind EntryKind) []mediaField {
	if kind == EntryKindFolklore {
		return folkloreMedia
	}
	return dictionaryMedia
}

// FieldSchema lists the editable content fields of a kind with their value
// types.
func FieldSchema(kind EntryKind) map[string]FieldType {
	schema := make(map[string]FieldType)
	for _, field := range textFieldsFor(kind) {
		schema[field.key] = FieldTypeText
	}
	for _, field := range boolFieldsFor(kind) {
		schema[field.key] = FieldTypeBool
	}
	if kind == EntryKindDictionary {
		schema[FieldInflectedForms] = FieldTypeMap
	}
	return schema
}

// MediaFieldKeys lists the file-reference fields of a kind.
func MediaFieldKeys(kind EntryKind) []string {
	fields := mediaFieldsFor(kind)
	keys := make([]string, 0, len(fields))
	for _, field := range fields {
		keys = append(keys, field.key)
	}
	return keys
}

// RequiredFieldKeys lists the fields that must be non-empty before a draft
// can be submitted for review.
func RequiredFieldKeys(kind EntryKind) []string {
	if kind == EntryKindFolklore {
		return []string{"title", "content", "category", "source"}
	}
	return []string{"term"}
}

// MissingRequired returns the required fields absent from data. A folklore
// category outside the allowed set counts as missing.
func MissingRequired(kind EntryKind, data ProposedData) []string {
	var missing []string
	for _, key := range RequiredFieldKeys(kind) {
		value := strings.TrimSpace(data.Text(key))
		if value == "" {
			missing = append(missing, key)
			continue
		}
		if kind == EntryKindFolklore && key == "category" && !FolkloreCategory(strings.ToLower(value)).Valid() {
			missing = append(missing, key)
		}
	}
	return missing
}

// Snapshot captures every editable content field of entry.
func Snapshot(entry Entry) ProposedData {
	data := make(ProposedData)
	for _, field := range textFieldsFor(entry.Kind) {
		data[field.key] = *field.value(&entry)
	}
	for _, field := range boolFieldsFor(entry.Kind) {
		data[field.key] = *field.value(&entry)
	}
	if entry.Kind == EntryKindDictionary {
		forms := make(map[string]string, len(entry.Dictionary.InflectedForms))
		for k, v := range entry.Dictionary.InflectedForms {
			forms[k] = v
		}
		data[FieldInflectedForms] = forms
	}
	return data
}

// ApplyProposed overlays the fields present in data onto the entry and
// returns the media fields whose reference changed. Values of the wrong type
// are ignored.
func (e *Entry) ApplyProposed(data ProposedData) []string {
	before := make(map[string]string)
	for _, field := range mediaFieldsFor(e.Kind) {
		before[field.key] = *field.value(e)
	}

	for _, field := range textFieldsFor(e.Kind) {
		raw, ok := data[field.key]
		if !ok {
			continue
		}
		if value, ok := raw.(string); ok {
			*field.value(e) = value
		}
	}
	for _, field := range boolFieldsFor(e.Kind) {
		raw, ok := data[field.key]
		if !ok {
			continue
		}
		if value, ok := raw.(bool); ok {
			*field.value(e) = value
		}
	}
	if e.Kind == EntryKindDictionary {
		if raw, ok := data[FieldInflectedForms]; ok {
			if forms, ok := inflectedForms(raw); ok {
				e.Dictionary.InflectedForms = forms
			}
		}
	}

	var changed []string
	for _, field := range mediaFieldsFor(e.Kind) {
		if before[field.key] != *field.value(e) {
			changed = append(changed, field.key)
		}
	}
	return changed
}

// AttributeMedia credits userID as contributor of the given media fields.
func (e *Entry) AttributeMedia(keys []string, userID string) {
	for _, field := range mediaFieldsFor(e.Kind) {
		for _, key := range keys {
			if key == field.key {
				*field.contributor(e) = userID
			}
		}
	}
}

// PresentMedia lists the media fields currently holding a reference.
func (e *Entry) PresentMedia() []string {
	var keys []string
	for _, field := range mediaFieldsFor(e.Kind) {
		if strings.TrimSpace(*field.value(e)) != "" {
			keys = append(keys, field.key)
		}
	}
	return keys
}

func inflectedForms(raw any) (map[string]string, bool) {
	switch typed := raw.(type) {
	case map[string]string:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = v
		}
		return out, true
	case map[string]any:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			text, ok := v.(string)
			if !ok {
				return nil, false
			}
			out[k] = text
		}
		return out, true
	case nil:
		return map[string]string{}, true
	default:
		return nil, false
	}
}
