package provider

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"flavor-twin/internal/core/flavor"
)

// 邊界層補上的預設值
const (
	DefaultCuisine   = "Unknown"
	DefaultContinent = "Global"
	DefaultSubRegion = "Gastronomic Universe"
)

// ToDish 將搜尋結果與詳細資料整理為標準菜餚。
// 各欄位依序嘗試詳細資料與原始搜尋結果中的不同欄位名稱；detail 可為 nil。
func ToDish(stub CandidateStub, detail RawRecipe) flavor.Dish {
	sources := []map[string]interface{}{recipeData(detail), stub.Raw}

	name := firstStringOf(sources, "recipe_title", "name")
	if name == "" {
		name = stub.Title
	}

	image := firstStringOf(sources, "img_url", "image_url")
	if image == "" {
		image = stub.Image
	}

	cuisine := firstStringOf(sources, "cuisine", "region")
	if cuisine == "" {
		cuisine = stub.Cuisine
	}
	if cuisine == "" {
		cuisine = DefaultCuisine
	}

	continent := firstStringOf(sources, "continent")
	if continent == "" {
		continent = DefaultContinent
	}
	subRegion := firstStringOf(sources, "subRegion")
	if subRegion == "" {
		subRegion = DefaultSubRegion
	}

	// 詳細資料頂層的 ingredients 優先
	ingredients := parseIngredients(detail["ingredients"])
	for _, m := range sources {
		if len(ingredients) > 0 {
			break
		}
		ingredients = parseIngredients(m["ingredients"])
	}

	return flavor.Dish{
		Name:        strings.TrimSpace(name),
		Ingredients: ingredients,
		Cuisine:     cuisine,
		Continent:   continent,
		SubRegion:   subRegion,
		Image:       image,
		Nutrients: &flavor.Nutrients{
			Energy:  firstIntOf(sources, flavor.DefaultEnergy, "energy (kcal)", "energy"),
			Protein: firstIntOf(sources, flavor.DefaultProtein, "protein (g)", "protein"),
			Carbs:   firstIntOf(sources, flavor.DefaultCarbs, "carbohydrate, by difference (g)", "carbs"),
		},
	}
}

// recipeData 依序解開 recipe、payload.data、data 包裝
func recipeData(detail RawRecipe) map[string]interface{} {
	if detail == nil {
		return map[string]interface{}{}
	}
	if m := asMap(detail["recipe"]); m != nil {
		return m
	}
	if payload := asMap(detail["payload"]); payload != nil {
		if m := asObject(payload["data"]); m != nil {
			return m
		}
	}
	if m := asObject(detail["data"]); m != nil {
		return m
	}
	return detail
}

// unwrapList 搜尋結果可能是 payload.data、data 或直接是陣列
func unwrapList(body interface{}) []interface{} {
	switch v := body.(type) {
	case []interface{}:
		return v
	case map[string]interface{}:
		if payload := asMap(v["payload"]); payload != nil {
			if list, ok := payload["data"].([]interface{}); ok {
				return list
			}
		}
		if list, ok := v["data"].([]interface{}); ok {
			return list
		}
		if list, ok := v["results"].([]interface{}); ok {
			return list
		}
	}
	return nil
}

func stubFromMap(m map[string]interface{}) CandidateStub {
	return CandidateStub{
		ID:      firstString(m, "recipe_id", "Recipe_id", "id"),
		Title:   firstString(m, "recipe_title", "name", "title"),
		Image:   firstString(m, "img_url", "image_url"),
		Cuisine: firstString(m, "cuisine", "region"),
		Raw:     m,
	}
}

func parseIngredients(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		var s string
		switch it := item.(type) {
		case string:
			s = it
		case map[string]interface{}:
			s = firstString(it, "ingredient", "name")
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// asObject 物件本身或陣列的第一個物件
func asObject(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return t
	case []interface{}:
		if len(t) > 0 {
			return asMap(t[0])
		}
	}
	return nil
}

// firstString 回傳第一個非空的字串欄位，數字 id 也轉為字串
func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstStringOf 依序在每個來源中找第一個非空字串欄位
func firstStringOf(sources []map[string]interface{}, keys ...string) string {
	for _, m := range sources {
		if s := firstString(m, keys...); s != "" {
			return s
		}
	}
	return ""
}

// firstIntOf 依序在每個來源中取第一個正數並截斷為整數；
// 空值、零或無法解析時使用預設值
func firstIntOf(sources []map[string]interface{}, def float64, keys ...string) float64 {
	for _, m := range sources {
		for _, k := range keys {
			n, ok := toNumber(m[k])
			if !ok || n <= 0 {
				continue
			}
			return math.Trunc(n)
		}
	}
	return def
}

func toNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		return parseLeadingNumber(t)
	}
	return 0, false
}

// parseLeadingNumber 解析字串開頭的數字，例如 "412 kcal"
func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || (end == 0 && (s[end] == '-' || s[end] == '+'))) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String 方便記錄
func (s CandidateStub) String() string {
	return fmt.Sprintf("%s(%s)", s.Title, s.ID)
}
