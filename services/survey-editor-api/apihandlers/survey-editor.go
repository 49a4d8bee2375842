package apihandlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mw "github.com/case-framework/survey-editor-backend/pkg/apihelpers/middlewares"
	surveydrafts "github.com/case-framework/survey-editor-backend/pkg/db/survey-drafts"
	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	editorsession "github.com/case-framework/survey-editor-backend/pkg/survey-editor/editor-session"
	itemkeys "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-keys"
	itemoutline "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-outline"
	itemtree "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-tree"
	itemtypes "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-types"
	"github.com/case-framework/survey-editor-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

const DEFAULT_OUTLINE_LANGUAGE = "en"

func (h *HttpEndpoints) AddSurveyEditorAPI(rg *gin.RouterGroup) {
	rg.GET("/item-types", h.getItemTypes)

	editorGroup := rg.Group("/studies/:studyKey/survey-editor")
	editorGroup.Use(mw.GetAndValidateManagementUserJWT(h.tokenSignKey))
	editorGroup.Use(mw.IsInstanceIDInJWTAllowed(h.allowedInstanceIDs))
	editorGroup.Use(mw.RequireSurveyEditor())
	{
		editorGroup.GET("", h.getSurveyDraftKeys)

		surveyGroup := editorGroup.Group("/:surveyKey")
		{
			surveyGroup.GET("", h.getSurveyDraft)
			surveyGroup.PUT("", mw.RequirePayload(), h.saveSurveyDraft)
			surveyGroup.DELETE("", h.deleteSurveyDraft)
			surveyGroup.PUT("/props", mw.RequirePayload(), h.updateSurveyDraftProps)
			surveyGroup.POST("/save", h.flushSurveyDraft)
			surveyGroup.POST("/close", h.closeSurveyDraft)
			surveyGroup.POST("/publish", h.publishSurveyDraft)
			surveyGroup.GET("/outline", h.getSurveyOutline)

			itemsGroup := surveyGroup.Group("/items")
			{
				itemsGroup.GET("", h.getItemList)
				itemsGroup.POST("", mw.RequirePayload(), h.addNewItem)
				itemsGroup.GET("/:itemKey", h.getItem)
				itemsGroup.PUT("/:itemKey", mw.RequirePayload(), h.updateItem)
				itemsGroup.DELETE("/:itemKey", h.deleteItem)
				itemsGroup.POST("/:itemKey/key", mw.RequirePayload(), h.changeItemKey)
				itemsGroup.POST("/:itemKey/move", mw.RequirePayload(), h.moveItem)
				itemsGroup.POST("/:itemKey/reorder", mw.RequirePayload(), h.reorderItem)
				itemsGroup.POST("/:itemKey/duplicate", h.duplicateItem)
				itemsGroup.POST("/:itemKey/convert", mw.RequirePayload(), h.convertItem)
			}
		}
	}
}

func (h *HttpEndpoints) getItemTypes(c *gin.Context) {
	supported := map[string]bool{}
	for _, t := range h.itemFactory.SupportedTypes() {
		supported[t] = true
	}

	type itemTypeInfo struct {
		itemtypes.TypeDescriptor
		CanCreate bool `json:"canCreate"`
	}
	infos := []itemTypeInfo{}
	for _, d := range itemtypes.ItemTypes() {
		infos = append(infos, itemTypeInfo{TypeDescriptor: d, CanCreate: supported[d.Key]})
	}
	c.JSON(http.StatusOK, gin.H{"itemTypes": infos})
}

func sessionKeyFromContext(c *gin.Context) (editorsession.SessionKey, string) {
	claims, _ := mw.ValidatedClaims(c)
	return editorsession.SessionKey{
		InstanceID: claims.InstanceID,
		StudyKey:   c.Param("studyKey"),
		SurveyKey:  c.Param("surveyKey"),
	}, claims.ID
}

// openSession returns the editor session of the survey. Without a draft, a new one is started from the
// current published version.
func (h *HttpEndpoints) openSession(key editorsession.SessionKey, userID string) (*editorsession.Session, error) {
	session, err := h.sessions.Open(key)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, surveydrafts.ErrDraftNotFound) {
		return nil, err
	}

	survey, err := h.dbConn.GetCurrentSurveyVersion(key.InstanceID, key.StudyKey, key.SurveyKey)
	if err != nil {
		return nil, err
	}
	slog.Info("starting survey draft from published version", slog.String("instanceID", key.InstanceID), slog.String("studyKey", key.StudyKey), slog.String("surveyKey", key.SurveyKey), slog.String("versionID", survey.VersionID))
	return h.sessions.Create(key, &studyTypes.SurveyDraft{
		StudyKey:         key.StudyKey,
		SurveyKey:        key.SurveyKey,
		Props:            survey.Props,
		SurveyDefinition: survey.SurveyDefinition,
		BaseVersionID:    survey.VersionID,
		ModifiedAt:       time.Now().Unix(),
		ModifiedBy:       userID,
	})
}

// withSession opens the session of the request and responds with an error if that fails.
func (h *HttpEndpoints) withSession(c *gin.Context, handle func(session *editorsession.Session, userID string)) {
	key, userID := sessionKeyFromContext(c)
	session, err := h.openSession(key, userID)
	if err != nil {
		respondWithError(c, "failed to open survey draft", err)
		return
	}
	handle(session, userID)
}

func (h *HttpEndpoints) getSurveyDraftKeys(c *gin.Context) {
	claims, _ := mw.ValidatedClaims(c)
	studyKey := c.Param("studyKey")

	keys, err := h.dbConn.GetSurveyDraftKeys(claims.InstanceID, studyKey)
	if err != nil {
		respondWithError(c, "failed to get survey draft keys", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"surveyKeys": keys})
}

func (h *HttpEndpoints) getSurveyDraft(c *gin.Context) {
	h.withSession(c, func(session *editorsession.Session, _ string) {
		draft := session.Draft()
		c.JSON(http.StatusOK, gin.H{
			"draft":             draft,
			"hasUnsavedChanges": session.HasUnsavedChanges(),
		})
	})
}

func (h *HttpEndpoints) saveSurveyDraft(c *gin.Context) {
	key, userID := sessionKeyFromContext(c)

	var req struct {
		Props            studyTypes.SurveyProps `json:"props"`
		SurveyDefinition studyTypes.SurveyItem  `json:"surveyDefinition"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SurveyDefinition.Key != key.SurveyKey {
		respondWithError(c, "survey definition key mismatch", fmt.Errorf("%w: %s", errKeyMismatch, req.SurveyDefinition.Key))
		return
	}
	if _, err := itemtree.NewItemTree(req.SurveyDefinition); err != nil {
		respondWithError(c, "invalid survey definition", err)
		return
	}

	session, err := h.sessions.Open(key)
	if errors.Is(err, surveydrafts.ErrDraftNotFound) {
		session, err = h.sessions.Create(key, &studyTypes.SurveyDraft{
			StudyKey:         key.StudyKey,
			SurveyKey:        key.SurveyKey,
			Props:            req.Props,
			SurveyDefinition: req.SurveyDefinition,
			ModifiedAt:       time.Now().Unix(),
			ModifiedBy:       userID,
		})
		if err != nil {
			respondWithError(c, "failed to create survey draft", err)
			return
		}
		slog.Info("survey draft created", slog.String("instanceID", key.InstanceID), slog.String("studyKey", key.StudyKey), slog.String("surveyKey", key.SurveyKey), slog.String("userID", userID))
		c.JSON(http.StatusCreated, gin.H{"draft": session.Draft()})
		return
	} else if err != nil {
		respondWithError(c, "failed to open survey draft", err)
		return
	}

	if err := session.Replace(userID, req.SurveyDefinition); err != nil {
		respondWithError(c, "failed to replace survey definition", err)
		return
	}
	if err := session.UpdateDraftInfos(userID, func(draft *studyTypes.SurveyDraft) {
		draft.Props = req.Props
	}); err != nil {
		respondWithError(c, "failed to update survey draft", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": session.Draft()})
}

func (h *HttpEndpoints) updateSurveyDraftProps(c *gin.Context) {
	var props studyTypes.SurveyProps
	if err := c.ShouldBindJSON(&props); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.withSession(c, func(session *editorsession.Session, userID string) {
		if err := session.UpdateDraftInfos(userID, func(draft *studyTypes.SurveyDraft) {
			draft.Props = props
		}); err != nil {
			respondWithError(c, "failed to update survey props", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"props": props})
	})
}

func (h *HttpEndpoints) deleteSurveyDraft(c *gin.Context) {
	key, userID := sessionKeyFromContext(c)

	h.sessions.Discard(key)
	if err := h.dbConn.DeleteSurveyDraft(key.InstanceID, key.StudyKey, key.SurveyKey); err != nil {
		respondWithError(c, "failed to delete survey draft", err)
		return
	}
	slog.Info("survey draft deleted", slog.String("instanceID", key.InstanceID), slog.String("studyKey", key.StudyKey), slog.String("surveyKey", key.SurveyKey), slog.String("userID", userID))
	c.JSON(http.StatusOK, gin.H{"message": "survey draft deleted"})
}

func (h *HttpEndpoints) flushSurveyDraft(c *gin.Context) {
	h.withSession(c, func(session *editorsession.Session, _ string) {
		if err := session.Flush(); err != nil {
			respondWithError(c, "failed to save survey draft", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "survey draft saved"})
	})
}

func (h *HttpEndpoints) closeSurveyDraft(c *gin.Context) {
	key, _ := sessionKeyFromContext(c)
	if err := h.sessions.Close(key); err != nil {
		respondWithError(c, "failed to save survey draft on close", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "survey draft closed"})
}

func (h *HttpEndpoints) publishSurveyDraft(c *gin.Context) {
	h.withSession(c, func(session *editorsession.Session, userID string) {
		key := session.Key()
		if err := session.Flush(); err != nil {
			respondWithError(c, "failed to save survey draft before publishing", err)
			return
		}

		existingVersionIDs, err := h.dbConn.GetSurveyVersionIDs(key.InstanceID, key.StudyKey, key.SurveyKey)
		if err != nil {
			respondWithError(c, "failed to get survey version IDs", err)
			return
		}

		draft := session.Draft()
		now := time.Now()
		survey := &studyTypes.Survey{
			SurveyKey:        key.SurveyKey,
			Props:            draft.Props,
			SurveyDefinition: draft.SurveyDefinition,
			Published:        now.Unix(),
			VersionID:        utils.GenerateSurveyVersionID(now, existingVersionIDs),
		}
		if err := h.dbConn.SaveSurveyVersion(key.InstanceID, key.StudyKey, survey); err != nil {
			respondWithError(c, "failed to publish survey", err)
			return
		}
		if err := session.UpdateDraftInfos(userID, func(d *studyTypes.SurveyDraft) {
			d.BaseVersionID = survey.VersionID
		}); err != nil {
			respondWithError(c, "failed to update survey draft after publishing", err)
			return
		}

		slog.Info("survey published", slog.String("instanceID", key.InstanceID), slog.String("studyKey", key.StudyKey), slog.String("surveyKey", key.SurveyKey), slog.String("versionID", survey.VersionID), slog.String("userID", userID))
		c.JSON(http.StatusOK, gin.H{"versionId": survey.VersionID})
	})
}

func (h *HttpEndpoints) getSurveyOutline(c *gin.Context) {
	lang := c.DefaultQuery("lang", DEFAULT_OUTLINE_LANGUAGE)
	format := c.DefaultQuery("format", "json")

	h.withSession(c, func(session *editorsession.Session, _ string) {
		var rows []itemoutline.OutlineRow
		if err := session.Read(func(tree *itemtree.ItemTree) error {
			rows = itemoutline.BuildFromTree(tree, lang)
			return nil
		}); err != nil {
			respondWithError(c, "failed to build outline", err)
			return
		}

		switch format {
		case "csv":
			var buf bytes.Buffer
			if err := itemoutline.WriteCSV(&buf, rows); err != nil {
				respondWithError(c, "failed to write outline", err)
				return
			}
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_outline.csv", session.Key().SurveyKey))
			c.Data(http.StatusOK, "text/csv", buf.Bytes())
		case "json":
			c.JSON(http.StatusOK, gin.H{"outline": rows})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format"})
		}
	})
}

func (h *HttpEndpoints) getItemList(c *gin.Context) {
	lang := c.DefaultQuery("lang", DEFAULT_OUTLINE_LANGUAGE)

	h.withSession(c, func(session *editorsession.Session, _ string) {
		var items []itemoutline.OutlineRow
		if err := session.Read(func(tree *itemtree.ItemTree) error {
			items = itemoutline.BuildFromTree(tree, lang)
			return nil
		}); err != nil {
			respondWithError(c, "failed to list items", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	})
}

func (h *HttpEndpoints) getItem(c *gin.Context) {
	itemKey := c.Param("itemKey")

	h.withSession(c, func(session *editorsession.Session, _ string) {
		var item *studyTypes.SurveyItem
		err := session.Read(func(tree *itemtree.ItemTree) error {
			var err error
			item, err = tree.FindItem(itemKey)
			return err
		})
		if err != nil {
			respondWithError(c, "failed to get item", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"item":     item,
			"itemType": itemtypes.Classify(item),
			"color":    itemtypes.ItemColor(item),
		})
	})
}

type addItemReq struct {
	ParentKey string `json:"parentKey"`
	ItemType  string `json:"itemType"`
	Index     *int   `json:"index,omitempty"`
}

func (h *HttpEndpoints) addNewItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.withSession(c, func(session *editorsession.Session, userID string) {
		var created *studyTypes.SurveyItem
		err := session.Apply(userID, func(tree *itemtree.ItemTree) error {
			parent, err := tree.FindItem(req.ParentKey)
			if err != nil {
				return err
			}
			newItem, err := h.itemFactory.CreateItem(req.ItemType, parent)
			if err != nil {
				return err
			}
			index := -1
			if req.Index != nil {
				index = *req.Index
			}
			created, err = tree.InsertChildAt(*newItem, req.ParentKey, index)
			return err
		})
		if err != nil {
			respondWithError(c, "failed to add item", err)
			return
		}
		slog.Info("survey item added", slog.String("itemKey", created.Key), slog.String("itemType", req.ItemType), slog.String("userID", userID))
		c.JSON(http.StatusCreated, gin.H{"item": created})
	})
}

func (h *HttpEndpoints) updateItem(c *gin.Context) {
	itemKey := c.Param("itemKey")

	var item studyTypes.SurveyItem
	if err := c.ShouldBindJSON(&item); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item.Key != itemKey {
		respondWithError(c, "item key mismatch", fmt.Errorf("%w: %s != %s", errKeyMismatch, item.Key, itemKey))
		return
	}

	h.withSession(c, func(session *editorsession.Session, userID string) {
		if err := session.Apply(userID, func(tree *itemtree.ItemTree) error {
			return tree.UpdateItem(item)
		}); err != nil {
			respondWithError(c, "failed to update item", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"item": item})
	})
}

func (h *HttpEndpoints) deleteItem(c *gin.Context) {
	itemKey := c.Param("itemKey")

	h.withSession(c, func(session *editorsession.Session, userID string) {
		if err := session.Apply(userID, func(tree *itemtree.ItemTree) error {
			return tree.DeleteItem(itemKey)
		}); err != nil {
			respondWithError(c, "failed to delete item", err)
			return
		}
		slog.Info("survey item deleted", slog.String("itemKey", itemKey), slog.String("userID", userID))
		c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
	})
}

func (h *HttpEndpoints) changeItemKey(c *gin.Context) {
	itemKey := c.Param("itemKey")

	var req struct {
		NewKey string `json:"newKey"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// the root key has to stay equal to the survey key, drafts and published versions are looked up by it
	if itemKey == c.Param("surveyKey") {
		respondWithError(c, "cannot rename survey root", fmt.Errorf("%w: %s is the survey key", itemtree.ErrRootItem, itemKey))
		return
	}

	// a bare local key is resolved against the current parent
	newKey := req.NewKey
	if !strings.Contains(newKey, itemkeys.KEY_SEPARATOR) && itemkeys.KeyDepth(itemKey) > 1 {
		newKey = itemkeys.JoinKey(itemkeys.ParentKeyOf(itemKey), newKey)
	}

	h.withSession(c, func(session *editorsession.Session, userID string) {
		if err := session.Apply(userID, func(tree *itemtree.ItemTree) error {
			return tree.ChangeKey(itemKey, newKey)
		}); err != nil {
			respondWithError(c, "failed to change item key", err)
			return
		}
		slog.Info("survey item key changed", slog.String("oldKey", itemKey), slog.String("newKey", newKey), slog.String("userID", userID))
		c.JSON(http.StatusOK, gin.H{
			"key":     newKey,
			"warning": "references to the old key in conditions and expressions are not updated",
		})
	})
}

func (h *HttpEndpoints) moveItem(c *gin.Context) {
	itemKey := c.Param("itemKey")

	var req struct {
		NewParentKey string `json:"newParentKey"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.withSession(c, func(session *editorsession.Session, userID string) {
		if err := session.Apply(userID, func(tree *itemtree.ItemTree) error {
			return tree.MoveItem(req.NewParentKey, itemKey)
		}); err != nil {
			respondWithError(c, "failed to move item", err)
			return
		}
		newKey := itemkeys.JoinKey(req.NewParentKey, itemkeys.LocalKeyOf(itemKey))
		slog.Info("survey item moved", slog.String("oldKey", itemKey), slog.String("newKey", newKey), slog.String("userID", userID))
		c.JSON(http.StatusOK, gin.H{"key": newKey})
	})
}

func (h *HttpEndpoints) reorderItem(c *gin.Context) {
	itemKey := c.Param("itemKey")

	var req struct {
		Index *int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index is required"})
		return
	}

	h.withSession(c, func(session *editorsession.Session, userID string) {
		if err := session.Apply(userID, func(tree *itemtree.ItemTree) error {
			return tree.ReorderItem(itemKey, *req.Index)
		}); err != nil {
			respondWithError(c, "failed to reorder item", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "item reordered"})
	})
}

func (h *HttpEndpoints) duplicateItem(c *gin.Context) {
	itemKey := c.Param("itemKey")

	h.withSession(c, func(session *editorsession.Session, userID string) {
		var copied *studyTypes.SurveyItem
		err := session.Apply(userID, func(tree *itemtree.ItemTree) error {
			parentKey, err := tree.ParentOf(itemKey)
			if err != nil {
				return err
			}
			parent, err := tree.FindItem(parentKey)
			if err != nil {
				return err
			}
			localKey, err := h.itemFactory.GenerateLocalKey(parent)
			if err != nil {
				return err
			}
			copied, err = tree.DuplicateItem(itemKey, localKey)
			return err
		})
		if err != nil {
			respondWithError(c, "failed to duplicate item", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"item": copied})
	})
}

func (h *HttpEndpoints) convertItem(c *gin.Context) {
	itemKey := c.Param("itemKey")

	var req struct {
		ItemType string `json:"itemType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.withSession(c, func(session *editorsession.Session, userID string) {
		var converted *studyTypes.SurveyItem
		err := session.Apply(userID, func(tree *itemtree.ItemTree) error {
			item, err := tree.FindItem(itemKey)
			if err != nil {
				return err
			}
			converted, err = h.itemFactory.ConvertItemType(item, req.ItemType)
			if err != nil {
				return err
			}
			return tree.UpdateItem(*converted)
		})
		if err != nil {
			respondWithError(c, "failed to convert item", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"item": converted, "itemType": req.ItemType})
	})
}
