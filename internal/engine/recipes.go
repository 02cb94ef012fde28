package engine

import (
	"context"

	"github.com/danieljhkim/redline/internal/recipes"
)

// SaveRecipe stores a reusable command template.
func (e *Engine) SaveRecipe(ctx context.Context, req *SaveRecipeRequest) (*recipes.Recipe, error) {
	return e.recipes.Save(ctx, req.Name, req.Template)
}

// ListRecipes returns every saved recipe.
func (e *Engine) ListRecipes(ctx context.Context) (*RecipeListResult, error) {
	all, err := e.recipes.List(ctx)
	if err != nil {
		return nil, err
	}
	return &RecipeListResult{Recipes: all}, nil
}

// GetRecipe finds a recipe by ID or name.
func (e *Engine) GetRecipe(ctx context.Context, ref string) (*recipes.Recipe, error) {
	return e.recipes.Get(ctx, ref)
}

// UpdateRecipe changes a recipe's name or template.
func (e *Engine) UpdateRecipe(ctx context.Context, req *UpdateRecipeRequest) (*recipes.Recipe, error) {
	return e.recipes.Update(ctx, req.Ref, req.Name, req.Template)
}

// DeleteRecipe removes a recipe. It reports whether one was removed.
func (e *Engine) DeleteRecipe(ctx context.Context, ref string) (bool, error) {
	return e.recipes.Delete(ctx, ref)
}
